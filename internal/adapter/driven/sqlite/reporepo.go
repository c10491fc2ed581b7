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
var _ driven.RepoStore = (*RepoRepo)(nil)

// RepoRepo is the SQLite implementation of the RepoStore port interface.
type RepoRepo struct {
	db *DB
}

// NewRepoRepo creates a new RepoRepo backed by the given DB.
func NewRepoRepo(db *DB) *RepoRepo {
	return &RepoRepo{db: db}
}

// Add inserts a new repository. Returns ErrRepoAlreadyExists if a repository
// with the same name already exists.
func (r *RepoRepo) Add(ctx context.Context, repo model.Repository) (model.Repository, error) {
	const query = `INSERT INTO repositories (name, bug_tracker_type, bug_tracker_url, created_at) VALUES (?, ?, ?, ?)`

	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		repo.Name, string(repo.BugTrackerType), repo.BugTrackerURL, formatTime(repo.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Repository{}, fmt.Errorf("add repository %s: %w", repo.Name, driven.ErrRepoAlreadyExists)
		}
		return model.Repository{}, fmt.Errorf("add repository %s: %w", repo.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Repository{}, fmt.Errorf("get repository id: %w", err)
	}
	repo.ID = id

	return repo, nil
}

// GetByID retrieves a repository by ID. Returns nil, nil if the repository
// does not exist.
func (r *RepoRepo) GetByID(ctx context.Context, id int64) (*model.Repository, error) {
	const query = `SELECT id, name, bug_tracker_type, bug_tracker_url, created_at FROM repositories WHERE id = ?`

	repo, err := scanRepository(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %d: %w", id, err)
	}

	return repo, nil
}

// GetByName retrieves a repository by name. Returns nil, nil if the
// repository does not exist.
func (r *RepoRepo) GetByName(ctx context.Context, name string) (*model.Repository, error) {
	const query = `SELECT id, name, bug_tracker_type, bug_tracker_url, created_at FROM repositories WHERE name = ?`

	repo, err := scanRepository(r.db.Reader.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", name, err)
	}

	return repo, nil
}

// ListAll returns all repositories ordered by name.
func (r *RepoRepo) ListAll(ctx context.Context) ([]model.Repository, error) {
	const query = `SELECT id, name, bug_tracker_type, bug_tracker_url, created_at FROM repositories ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, *repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

func scanRepository(s scanner) (*model.Repository, error) {
	var repo model.Repository
	var trackerType, createdAt string

	err := s.Scan(&repo.ID, &repo.Name, &trackerType, &repo.BugTrackerURL, &createdAt)
	if err != nil {
		return nil, err
	}

	repo.BugTrackerType = model.BugTrackerType(trackerType)

	repo.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &repo, nil
}
