package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

func newBugFixture(t *testing.T, ttl time.Duration, info model.BugInfo) (*BugInfoService, *mockTracker, *recordingObserver, *int) {
	t.Helper()

	repos := &mockRepoStore{repos: map[int64]model.Repository{
		1: {ID: 1, Name: "core", BugTrackerType: model.BugTrackerJIRA, BugTrackerURL: "https://jira.example.com"},
		2: {ID: 2, Name: "docs"},
	}}
	tracker := &mockTracker{info: info}
	builds := 0
	provider := NewTrackerProvider(func(model.Repository) (driven.BugTracker, error) {
		builds++
		return tracker, nil
	})
	observer := &recordingObserver{}

	return NewBugInfoService(repos, provider, ttl, observer, nil), tracker, observer, &builds
}

func TestBugInfoService_GetBugInfo(t *testing.T) {
	info := model.BugInfo{Summary: "Crash", Description: "It crashes", Status: "Open"}
	svc, tracker, observer, _ := newBugFixture(t, time.Minute, info)

	lookup, err := svc.GetBugInfo(context.Background(), 1, "PROJ-1")
	require.NoError(t, err)

	assert.Equal(t, "PROJ-1", lookup.ID)
	assert.Equal(t, "https://tracker.example.com/browse/PROJ-1", lookup.URL)
	assert.Equal(t, info, lookup.BugInfo)
	assert.Equal(t, 1, tracker.callCount())
	assert.Equal(t, []string{LookupResultFound}, observer.results)
}

func TestBugInfoService_CachesFoundResults(t *testing.T) {
	svc, tracker, observer, builds := newBugFixture(t, time.Minute, model.BugInfo{Summary: "Crash"})
	ctx := context.Background()

	_, err := svc.GetBugInfo(ctx, 1, "PROJ-1")
	require.NoError(t, err)
	lookup, err := svc.GetBugInfo(ctx, 1, "PROJ-1")
	require.NoError(t, err)

	assert.Equal(t, "Crash", lookup.Summary)
	assert.Equal(t, 1, tracker.callCount())
	assert.Equal(t, 1, *builds)
	assert.Equal(t, []string{LookupResultFound, LookupResultHit}, observer.results)
}

func TestBugInfoService_DoesNotCacheEmptyResults(t *testing.T) {
	svc, tracker, observer, builds := newBugFixture(t, time.Minute, model.BugInfo{})
	ctx := context.Background()

	for range 2 {
		lookup, err := svc.GetBugInfo(ctx, 1, "PROJ-1")
		require.NoError(t, err)
		assert.True(t, lookup.IsEmpty())
	}

	assert.Equal(t, 2, tracker.callCount())
	assert.Equal(t, 1, *builds, "tracker should be reused across lookups")
	assert.Equal(t, []string{LookupResultEmpty, LookupResultEmpty}, observer.results)
}

func TestBugInfoService_ZeroTTLDisablesCache(t *testing.T) {
	svc, tracker, _, _ := newBugFixture(t, 0, model.BugInfo{Summary: "Crash"})
	ctx := context.Background()

	for range 3 {
		_, err := svc.GetBugInfo(ctx, 1, "PROJ-1")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, tracker.callCount())
}

func TestBugInfoService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		repoID  int64
		bugID   string
		wantErr error
	}{
		{name: "unknown repository", repoID: 99, bugID: "PROJ-1", wantErr: ErrNotFound},
		{name: "no bug tracker", repoID: 2, bugID: "PROJ-1", wantErr: ErrNoBugTracker},
		{name: "blank bug ID", repoID: 1, bugID: "  ", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tracker, _, _ := newBugFixture(t, time.Minute, model.BugInfo{Summary: "x"})

			_, err := svc.GetBugInfo(context.Background(), tt.repoID, tt.bugID)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, tracker.callCount())
		})
	}
}

func TestBugInfoService_FactoryError(t *testing.T) {
	repos := &mockRepoStore{repos: map[int64]model.Repository{
		1: {ID: 1, Name: "core", BugTrackerType: model.BugTrackerGitHub, BugTrackerURL: "not-a-repo"},
	}}
	factoryErr := errors.New("bad tracker config")
	provider := NewTrackerProvider(func(model.Repository) (driven.BugTracker, error) {
		return nil, factoryErr
	})
	svc := NewBugInfoService(repos, provider, time.Minute, nil, nil)

	_, err := svc.GetBugInfo(context.Background(), 1, "1")
	assert.ErrorIs(t, err, factoryErr)
}

func TestTrackerProvider_RebuildsOnConfigChange(t *testing.T) {
	builds := 0
	provider := NewTrackerProvider(func(model.Repository) (driven.BugTracker, error) {
		builds++
		return &mockTracker{}, nil
	})

	repo := model.Repository{ID: 1, BugTrackerType: model.BugTrackerJIRA, BugTrackerURL: "https://a.example.com"}
	first, err := provider.Get(repo)
	require.NoError(t, err)
	again, err := provider.Get(repo)
	require.NoError(t, err)
	assert.Same(t, first, again)

	repo.BugTrackerURL = "https://b.example.com"
	changed, err := provider.Get(repo)
	require.NoError(t, err)
	assert.NotSame(t, first, changed)
	assert.Equal(t, 2, builds)
}
