package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReviewRequestStore = (*ReviewRequestRepo)(nil)

// ReviewRequestRepo is the SQLite implementation of the ReviewRequestStore
// port interface.
type ReviewRequestRepo struct {
	db *DB
}

// NewReviewRequestRepo creates a new ReviewRequestRepo backed by the given DB.
func NewReviewRequestRepo(db *DB) *ReviewRequestRepo {
	return &ReviewRequestRepo{db: db}
}

// Add inserts a review request and returns it with its assigned ID.
func (r *ReviewRequestRepo) Add(ctx context.Context, rr model.ReviewRequest) (model.ReviewRequest, error) {
	const query = `
		INSERT INTO review_requests (submitter_id, repository_id, local_site, summary, public, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if rr.CreatedAt.IsZero() {
		rr.CreatedAt = time.Now().UTC()
	}

	var repositoryID any
	if rr.RepositoryID != nil {
		repositoryID = *rr.RepositoryID
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		rr.SubmitterID, repositoryID, rr.LocalSite, rr.Summary,
		boolToInt(rr.Public), formatTime(rr.CreatedAt),
	)
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("add review request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("get review request id: %w", err)
	}
	rr.ID = id

	return rr, nil
}

// GetByID retrieves a review request by ID. Returns nil, nil if it does not exist.
func (r *ReviewRequestRepo) GetByID(ctx context.Context, id int64) (*model.ReviewRequest, error) {
	const query = `
		SELECT id, submitter_id, repository_id, local_site, summary, public, created_at
		FROM review_requests
		WHERE id = ?
	`

	var rr model.ReviewRequest
	var repositoryID sql.NullInt64
	var public int
	var createdAt string

	err := r.db.Reader.QueryRowContext(ctx, query, id).Scan(
		&rr.ID, &rr.SubmitterID, &repositoryID, &rr.LocalSite, &rr.Summary, &public, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review request %d: %w", id, err)
	}

	if repositoryID.Valid {
		v := repositoryID.Int64
		rr.RepositoryID = &v
	}
	rr.Public = public != 0

	rr.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &rr, nil
}

// AddScreenshot attaches a screenshot to a review request.
func (r *ReviewRequestRepo) AddScreenshot(ctx context.Context, s model.Screenshot) (model.Screenshot, error) {
	const query = `INSERT INTO screenshots (review_request_id, caption, path) VALUES (?, ?, ?)`

	result, err := r.db.Writer.ExecContext(ctx, query, s.ReviewRequestID, s.Caption, s.Path)
	if err != nil {
		return model.Screenshot{}, fmt.Errorf("add screenshot to review request %d: %w", s.ReviewRequestID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Screenshot{}, fmt.Errorf("get screenshot id: %w", err)
	}
	s.ID = id

	return s, nil
}

// GetScreenshot retrieves a screenshot by ID. Returns nil, nil if it does not exist.
func (r *ReviewRequestRepo) GetScreenshot(ctx context.Context, id int64) (*model.Screenshot, error) {
	const query = `SELECT id, review_request_id, caption, path FROM screenshots WHERE id = ?`

	var s model.Screenshot
	err := r.db.Reader.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.ReviewRequestID, &s.Caption, &s.Path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get screenshot %d: %w", id, err)
	}

	return &s, nil
}
