package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ScreenshotCommentStore = (*CommentRepo)(nil)

const commentColumns = `
	id, review_id, screenshot_id, reply_to_id, text, rich_text,
	x, y, w, h, issue_opened, issue_status, extra_data, timestamp
`

// CommentRepo is the SQLite implementation of the ScreenshotCommentStore
// port interface.
type CommentRepo struct {
	db *DB
}

// NewCommentRepo creates a new CommentRepo backed by the given DB.
func NewCommentRepo(db *DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// Create inserts a screenshot comment. A zero Timestamp is set to now.
func (r *CommentRepo) Create(ctx context.Context, comment model.ScreenshotComment) (model.ScreenshotComment, error) {
	const query = `
		INSERT INTO screenshot_comments (
			review_id, screenshot_id, reply_to_id, text, rich_text,
			x, y, w, h, issue_opened, issue_status, extra_data, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if comment.Timestamp.IsZero() {
		comment.Timestamp = time.Now().UTC()
	}

	extraData, err := encodeExtraData(comment.ExtraData)
	if err != nil {
		return model.ScreenshotComment{}, err
	}

	var replyToID any
	if comment.ReplyToID != nil {
		replyToID = *comment.ReplyToID
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		comment.ReviewID, comment.ScreenshotID, replyToID, comment.Text, boolToInt(comment.RichText),
		comment.X, comment.Y, comment.W, comment.H,
		boolToInt(comment.IssueOpened), string(comment.IssueStatus), extraData, formatTime(comment.Timestamp),
	)
	if err != nil {
		return model.ScreenshotComment{}, fmt.Errorf("create screenshot comment on review %d: %w", comment.ReviewID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.ScreenshotComment{}, fmt.Errorf("get screenshot comment id: %w", err)
	}
	comment.ID = id

	return comment, nil
}

// Update persists the mutable fields of a comment: text, rich_text,
// issue state, and extra_data. The creation timestamp is left untouched.
func (r *CommentRepo) Update(ctx context.Context, comment model.ScreenshotComment) (model.ScreenshotComment, error) {
	const query = `
		UPDATE screenshot_comments
		SET text = ?, rich_text = ?, issue_opened = ?, issue_status = ?, extra_data = ?
		WHERE id = ?
	`

	extraData, err := encodeExtraData(comment.ExtraData)
	if err != nil {
		return model.ScreenshotComment{}, err
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		comment.Text, boolToInt(comment.RichText), boolToInt(comment.IssueOpened),
		string(comment.IssueStatus), extraData, comment.ID,
	)
	if err != nil {
		return model.ScreenshotComment{}, fmt.Errorf("update screenshot comment %d: %w", comment.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return model.ScreenshotComment{}, fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return model.ScreenshotComment{}, fmt.Errorf("update screenshot comment %d: not found", comment.ID)
	}

	return comment, nil
}

// Delete removes a comment. Replies to it are removed by foreign key cascade.
func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM screenshot_comments WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete screenshot comment %d: %w", id, err)
	}

	return nil
}

// GetByID retrieves a comment by ID. Returns nil, nil if it does not exist.
func (r *CommentRepo) GetByID(ctx context.Context, id int64) (*model.ScreenshotComment, error) {
	query := `SELECT ` + commentColumns + ` FROM screenshot_comments WHERE id = ?`

	comment, err := scanComment(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get screenshot comment %d: %w", id, err)
	}

	return comment, nil
}

// GetReplyTo returns the comment in reviewID replying to replyToID. Returns
// nil, nil if the review holds no such reply.
func (r *CommentRepo) GetReplyTo(ctx context.Context, reviewID, replyToID int64) (*model.ScreenshotComment, error) {
	query := `SELECT ` + commentColumns + `
		FROM screenshot_comments
		WHERE review_id = ? AND reply_to_id = ?
		ORDER BY id
		LIMIT 1`

	comment, err := scanComment(r.db.Reader.QueryRowContext(ctx, query, reviewID, replyToID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reply to comment %d in review %d: %w", replyToID, reviewID, err)
	}

	return comment, nil
}

// ListByReview returns up to limit comments of the review starting at offset,
// ordered by timestamp then ID. Rows written by other services may use a
// different timestamp format, so ordering goes through julianday.
func (r *CommentRepo) ListByReview(ctx context.Context, reviewID int64, offset, limit int) ([]model.ScreenshotComment, error) {
	query := `SELECT ` + commentColumns + `
		FROM screenshot_comments
		WHERE review_id = ?
		ORDER BY julianday(timestamp), timestamp, id
		LIMIT ? OFFSET ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, reviewID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query screenshot comments for review %d: %w", reviewID, err)
	}
	defer rows.Close()

	comments := []model.ScreenshotComment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan screenshot comment: %w", err)
		}
		comments = append(comments, *comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate screenshot comments: %w", err)
	}

	return comments, nil
}

// CountByReview returns the number of comments in the review.
func (r *CommentRepo) CountByReview(ctx context.Context, reviewID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM screenshot_comments WHERE review_id = ?`

	var count int
	if err := r.db.Reader.QueryRowContext(ctx, query, reviewID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count screenshot comments for review %d: %w", reviewID, err)
	}

	return count, nil
}

func encodeExtraData(data map[string]any) (string, error) {
	if len(data) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode extra_data: %w", err)
	}
	return string(b), nil
}

func scanComment(s scanner) (*model.ScreenshotComment, error) {
	var comment model.ScreenshotComment
	var replyToID sql.NullInt64
	var richText, issueOpened int
	var issueStatus, extraData, timestamp string

	err := s.Scan(
		&comment.ID, &comment.ReviewID, &comment.ScreenshotID, &replyToID,
		&comment.Text, &richText, &comment.X, &comment.Y, &comment.W, &comment.H,
		&issueOpened, &issueStatus, &extraData, &timestamp,
	)
	if err != nil {
		return nil, err
	}

	if replyToID.Valid {
		id := replyToID.Int64
		comment.ReplyToID = &id
	}
	comment.RichText = richText != 0
	comment.IssueOpened = issueOpened != 0
	comment.IssueStatus = model.IssueStatus(issueStatus)

	comment.ExtraData = map[string]any{}
	if extraData != "" {
		if err := json.Unmarshal([]byte(extraData), &comment.ExtraData); err != nil {
			return nil, fmt.Errorf("decode extra_data: %w", err)
		}
	}

	comment.Timestamp, err = parseTime(timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp: %w", err)
	}

	return &comment, nil
}
