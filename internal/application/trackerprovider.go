package application

import (
	"sync"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

// TrackerFactory builds the bug tracker adapter for a repository.
type TrackerFactory func(repo model.Repository) (driven.BugTracker, error)

type trackerEntry struct {
	kind    model.BugTrackerType
	url     string
	tracker driven.BugTracker
}

// TrackerProvider holds one bug tracker per repository so adapters that build
// their client lazily only do it once. An entry is rebuilt when the
// repository's bug tracker configuration changes.
type TrackerProvider struct {
	mu       sync.RWMutex
	factory  TrackerFactory
	trackers map[int64]trackerEntry
}

// NewTrackerProvider creates a provider that builds trackers with factory.
func NewTrackerProvider(factory TrackerFactory) *TrackerProvider {
	return &TrackerProvider{
		factory:  factory,
		trackers: make(map[int64]trackerEntry),
	}
}

// Get returns the tracker for repo, building it on first use.
func (p *TrackerProvider) Get(repo model.Repository) (driven.BugTracker, error) {
	p.mu.RLock()
	entry, ok := p.trackers[repo.ID]
	p.mu.RUnlock()
	if ok && entry.kind == repo.BugTrackerType && entry.url == repo.BugTrackerURL {
		return entry.tracker, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have built it while we waited for the lock.
	entry, ok = p.trackers[repo.ID]
	if ok && entry.kind == repo.BugTrackerType && entry.url == repo.BugTrackerURL {
		return entry.tracker, nil
	}

	tracker, err := p.factory(repo)
	if err != nil {
		return nil, err
	}
	p.trackers[repo.ID] = trackerEntry{
		kind:    repo.BugTrackerType,
		url:     repo.BugTrackerURL,
		tracker: tracker,
	}
	return tracker, nil
}
