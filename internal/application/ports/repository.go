package ports

import (
	"context"

	"github.com/julien-rg/wheelbase-server/internal/domain"
)

// UserRepository defines persistence for users. Lookup methods return
// (nil, nil) when no user matches; username and email lookups are
// case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByUsernameOrEmail matches either field against the same value.
	GetByUsernameOrEmail(ctx context.Context, value string) (*domain.User, error)
	Exists(ctx context.Context, id domain.UserID) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error
	// SearchByUsername returns summaries whose username contains the
	// query, case-insensitively.
	SearchByUsername(ctx context.Context, query string) ([]domain.Summary, error)
}

// FollowRepository defines persistence for the directed follow graph.
// Insert must surface a store-level unique violation as
// errors.ErrAlreadyFollowing and a missing-endpoint violation as
// errors.ErrUserNotFound; the constraint, not any caller pre-check, is
// the source of truth under concurrent writers.
type FollowRepository interface {
	Insert(ctx context.Context, edge domain.FollowEdge) error
	// Delete removes the edge if present and reports whether it existed.
	Delete(ctx context.Context, followerID, followedID domain.UserID) (bool, error)
	Exists(ctx context.Context, followerID, followedID domain.UserID) (bool, error)
	// ListFollowers returns summaries of users following the given user.
	ListFollowers(ctx context.Context, followedID domain.UserID) ([]domain.Summary, error)
	// ListFollowing returns summaries of users the given user follows.
	ListFollowing(ctx context.Context, followerID domain.UserID) ([]domain.Summary, error)
}
