package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

// --- In-memory store fakes shared by the service tests ---

type mockReviewRequestStore struct {
	requests map[int64]model.ReviewRequest
	err      error
}

func (m *mockReviewRequestStore) Add(_ context.Context, rr model.ReviewRequest) (model.ReviewRequest, error) {
	rr.ID = int64(len(m.requests) + 1)
	m.requests[rr.ID] = rr
	return rr, nil
}

func (m *mockReviewRequestStore) GetByID(_ context.Context, id int64) (*model.ReviewRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	rr, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	return &rr, nil
}

func (m *mockReviewRequestStore) AddScreenshot(_ context.Context, s model.Screenshot) (model.Screenshot, error) {
	return s, nil
}

func (m *mockReviewRequestStore) GetScreenshot(_ context.Context, _ int64) (*model.Screenshot, error) {
	return nil, nil
}

type mockReviewStore struct {
	reviews  map[int64]model.Review
	touched  []int64
	touchErr error
}

func (m *mockReviewStore) Add(_ context.Context, r model.Review) (model.Review, error) {
	r.ID = int64(len(m.reviews) + 1)
	m.reviews[r.ID] = r
	return r, nil
}

func (m *mockReviewStore) GetByID(_ context.Context, id int64) (*model.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *mockReviewStore) Touch(_ context.Context, id int64) error {
	m.touched = append(m.touched, id)
	return m.touchErr
}

type mockCommentStore struct {
	comments map[int64]model.ScreenshotComment
	nextID   int64
	created  int
	updated  int
	deleted  []int64
}

func newMockCommentStore(comments ...model.ScreenshotComment) *mockCommentStore {
	m := &mockCommentStore{comments: map[int64]model.ScreenshotComment{}, nextID: 100}
	for _, c := range comments {
		m.comments[c.ID] = c
	}
	return m
}

func (m *mockCommentStore) Create(_ context.Context, c model.ScreenshotComment) (model.ScreenshotComment, error) {
	m.nextID++
	m.created++
	c.ID = m.nextID
	c.Timestamp = time.Now()
	m.comments[c.ID] = c
	return c, nil
}

func (m *mockCommentStore) Update(_ context.Context, c model.ScreenshotComment) (model.ScreenshotComment, error) {
	if _, ok := m.comments[c.ID]; !ok {
		return model.ScreenshotComment{}, errors.New("no such comment")
	}
	m.updated++
	m.comments[c.ID] = c
	return c, nil
}

func (m *mockCommentStore) Delete(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	delete(m.comments, id)
	return nil
}

func (m *mockCommentStore) GetByID(_ context.Context, id int64) (*model.ScreenshotComment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *mockCommentStore) GetReplyTo(_ context.Context, reviewID, replyToID int64) (*model.ScreenshotComment, error) {
	for _, c := range m.comments {
		if c.ReviewID == reviewID && c.ReplyToID != nil && *c.ReplyToID == replyToID {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockCommentStore) byReview(reviewID int64) []model.ScreenshotComment {
	var out []model.ScreenshotComment
	for _, c := range m.comments {
		if c.ReviewID == reviewID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockCommentStore) ListByReview(_ context.Context, reviewID int64, offset, limit int) ([]model.ScreenshotComment, error) {
	all := m.byReview(reviewID)
	if offset >= len(all) {
		return []model.ScreenshotComment{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (m *mockCommentStore) CountByReview(_ context.Context, reviewID int64) (int, error) {
	return len(m.byReview(reviewID)), nil
}

type mockRepoStore struct {
	repos map[int64]model.Repository
	err   error
}

func (m *mockRepoStore) Add(_ context.Context, repo model.Repository) (model.Repository, error) {
	repo.ID = int64(len(m.repos) + 1)
	m.repos[repo.ID] = repo
	return repo, nil
}

func (m *mockRepoStore) GetByID(_ context.Context, id int64) (*model.Repository, error) {
	if m.err != nil {
		return nil, m.err
	}
	repo, ok := m.repos[id]
	if !ok {
		return nil, nil
	}
	return &repo, nil
}

func (m *mockRepoStore) GetByName(_ context.Context, name string) (*model.Repository, error) {
	for _, repo := range m.repos {
		if repo.Name == name {
			return &repo, nil
		}
	}
	return nil, nil
}

func (m *mockRepoStore) ListAll(_ context.Context) ([]model.Repository, error) {
	out := make([]model.Repository, 0, len(m.repos))
	for _, repo := range m.repos {
		out = append(out, repo)
	}
	return out, nil
}

type mockUserStore struct {
	users  map[string]model.User
	tokens map[string]int64
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[string]model.User{}, tokens: map[string]int64{}}
}

func (m *mockUserStore) Add(_ context.Context, u model.User) (model.User, error) {
	if _, ok := m.users[u.Username]; ok {
		return model.User{}, driven.ErrUserAlreadyExists
	}
	u.ID = int64(len(m.users) + 1)
	m.users[u.Username] = u
	return u, nil
}

func (m *mockUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *mockUserStore) AddToken(_ context.Context, token model.APIToken) (model.APIToken, error) {
	token.ID = int64(len(m.tokens) + 1)
	m.tokens[token.TokenHash] = token.UserID
	return token, nil
}

func (m *mockUserStore) GetByTokenHash(ctx context.Context, hash string) (*model.User, error) {
	userID, ok := m.tokens[hash]
	if !ok {
		return nil, nil
	}
	return m.GetByID(ctx, userID)
}

type mockTracker struct {
	mu    sync.Mutex
	info  model.BugInfo
	calls int
}

func (m *mockTracker) BugInfo(_ context.Context, _ string) model.BugInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.info
}

func (m *mockTracker) BugURL(bugID string) string {
	return "https://tracker.example.com/browse/" + bugID
}

func (m *mockTracker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type recordingObserver struct {
	results []string
}

func (o *recordingObserver) ObserveBugLookup(_ model.BugTrackerType, result string) {
	o.results = append(o.results, result)
}

// --- Helper functions ---

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}
