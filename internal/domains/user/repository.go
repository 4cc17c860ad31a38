package user

import "context"

// Repository: read-only access to users
type Repository interface {
	// GetByID returns ErrUserNotFound if not exists
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername matches the username exactly (case-sensitive)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
