package model

import "time"

// User is an account that can author reviews and replies.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// APIToken is a bearer credential bound to a user. Only the SHA-256 hash of
// the token is persisted.
type APIToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	Note      string
	CreatedAt time.Time
}
