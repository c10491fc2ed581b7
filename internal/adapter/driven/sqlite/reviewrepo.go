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
var _ driven.ReviewStore = (*ReviewRepo)(nil)

// ReviewRepo is the SQLite implementation of the ReviewStore port interface.
type ReviewRepo struct {
	db *DB
}

// NewReviewRepo creates a new ReviewRepo backed by the given DB.
func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Add inserts a review or reply and returns it with its assigned ID.
func (r *ReviewRepo) Add(ctx context.Context, review model.Review) (model.Review, error) {
	const query = `
		INSERT INTO reviews (review_request_id, user_id, base_reply_to_id, public, body_top, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if review.Timestamp.IsZero() {
		review.Timestamp = time.Now().UTC()
	}

	var baseReplyToID any
	if review.BaseReplyToID != nil {
		baseReplyToID = *review.BaseReplyToID
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		review.ReviewRequestID, review.UserID, baseReplyToID,
		boolToInt(review.Public), review.BodyTop, formatTime(review.Timestamp),
	)
	if err != nil {
		return model.Review{}, fmt.Errorf("add review on review request %d: %w", review.ReviewRequestID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Review{}, fmt.Errorf("get review id: %w", err)
	}
	review.ID = id

	return review, nil
}

// GetByID retrieves a review or reply by ID. Returns nil, nil if it does not exist.
func (r *ReviewRepo) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	const query = `
		SELECT id, review_request_id, user_id, base_reply_to_id, public, body_top, timestamp
		FROM reviews
		WHERE id = ?
	`

	review, err := scanReview(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}

	return review, nil
}

// Touch sets the review's timestamp to now.
func (r *ReviewRepo) Touch(ctx context.Context, id int64) error {
	const query = `UPDATE reviews SET timestamp = ? WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, formatTime(time.Now()), id); err != nil {
		return fmt.Errorf("touch review %d: %w", id, err)
	}

	return nil
}

func scanReview(s scanner) (*model.Review, error) {
	var review model.Review
	var baseReplyToID sql.NullInt64
	var public int
	var timestamp string

	err := s.Scan(
		&review.ID, &review.ReviewRequestID, &review.UserID, &baseReplyToID,
		&public, &review.BodyTop, &timestamp,
	)
	if err != nil {
		return nil, err
	}

	if baseReplyToID.Valid {
		id := baseReplyToID.Int64
		review.BaseReplyToID = &id
	}
	review.Public = public != 0

	review.Timestamp, err = parseTime(timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp: %w", err)
	}

	return &review, nil
}
