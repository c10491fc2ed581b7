package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

// Bug lookup results reported to a BugLookupObserver.
const (
	LookupResultHit   = "hit"
	LookupResultFound = "found"
	LookupResultEmpty = "empty"
)

// BugLookupObserver is notified of every bug lookup. The metrics package
// implements it.
type BugLookupObserver interface {
	ObserveBugLookup(tracker model.BugTrackerType, result string)
}

// BugLookup is the result of resolving a bug ID against a repository's bug
// tracker.
type BugLookup struct {
	ID  string
	URL string
	model.BugInfo
}

// BugInfoService resolves bug IDs mentioned in review requests through the
// bug tracker configured on the repository. Non-empty results are memoized
// for the configured TTL.
type BugInfoService struct {
	repos    driven.RepoStore
	trackers *TrackerProvider
	cache    *gocache.Cache
	observer BugLookupObserver
	logger   *slog.Logger
}

// NewBugInfoService creates a BugInfoService. A ttl of zero or less disables
// memoization. observer may be nil.
func NewBugInfoService(
	repos driven.RepoStore,
	trackers *TrackerProvider,
	ttl time.Duration,
	observer BugLookupObserver,
	logger *slog.Logger,
) *BugInfoService {
	if logger == nil {
		logger = slog.Default()
	}

	var cache *gocache.Cache
	if ttl > 0 {
		// No janitor: expired entries are ignored by Get and overwritten on
		// the next successful lookup.
		cache = gocache.New(ttl, 0)
	}

	return &BugInfoService{
		repos:    repos,
		trackers: trackers,
		cache:    cache,
		observer: observer,
		logger:   logger,
	}
}

// GetBugInfo looks up bugID in the bug tracker of the given repository.
// Returns ErrNotFound if the repository does not exist and ErrNoBugTracker if
// it has no bug tracker. Tracker failures are not errors: the returned
// BugLookup simply carries an empty BugInfo.
func (s *BugInfoService) GetBugInfo(ctx context.Context, repositoryID int64, bugID string) (BugLookup, error) {
	bugID = strings.TrimSpace(bugID)
	if bugID == "" {
		return BugLookup{}, fmt.Errorf("empty bug ID: %w", ErrNotFound)
	}

	repo, err := s.repos.GetByID(ctx, repositoryID)
	if err != nil {
		return BugLookup{}, fmt.Errorf("get repository %d: %w", repositoryID, err)
	}
	if repo == nil {
		return BugLookup{}, fmt.Errorf("repository %d: %w", repositoryID, ErrNotFound)
	}
	if !repo.HasBugTracker() {
		return BugLookup{}, fmt.Errorf("repository %q: %w", repo.Name, ErrNoBugTracker)
	}

	tracker, err := s.trackers.Get(*repo)
	if err != nil {
		return BugLookup{}, fmt.Errorf("build bug tracker for %q: %w", repo.Name, err)
	}

	lookup := BugLookup{ID: bugID, URL: tracker.BugURL(bugID)}
	key := cacheKey(repo.ID, bugID)

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			lookup.BugInfo = cached.(model.BugInfo)
			s.observe(repo.BugTrackerType, LookupResultHit)
			return lookup, nil
		}
	}

	lookup.BugInfo = tracker.BugInfo(ctx, bugID)
	if lookup.IsEmpty() {
		s.observe(repo.BugTrackerType, LookupResultEmpty)
		return lookup, nil
	}

	if s.cache != nil {
		s.cache.SetDefault(key, lookup.BugInfo)
	}
	s.observe(repo.BugTrackerType, LookupResultFound)

	s.logger.Debug("bug info fetched", "repository", repo.Name, "bug_id", bugID)

	return lookup, nil
}

func (s *BugInfoService) observe(tracker model.BugTrackerType, result string) {
	if s.observer != nil {
		s.observer.ObserveBugLookup(tracker, result)
	}
}

func cacheKey(repositoryID int64, bugID string) string {
	return fmt.Sprintf("repository-%d-bug-%s", repositoryID, bugID)
}
