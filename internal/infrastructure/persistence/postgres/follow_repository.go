package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julien-rg/wheelbase-server/internal/application/ports"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

const (
	insertFollowSQL = `INSERT INTO follows (follower_id, followed_id, created_at) VALUES ($1, $2, $3)`
	deleteFollowSQL = `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`
	followExistsSQL = `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2)`

	listFollowersSQL = `SELECT u.id, u.username, u.avatar_url, u.visibility
		FROM follows f JOIN users u ON u.id = f.follower_id
		WHERE f.followed_id = $1 ORDER BY f.created_at`
	listFollowingSQL = `SELECT u.id, u.username, u.avatar_url, u.visibility
		FROM follows f JOIN users u ON u.id = f.followed_id
		WHERE f.follower_id = $1 ORDER BY f.created_at`
)

// FollowRepository is the pgx-backed implementation of
// ports.FollowRepository. The (follower_id, followed_id) primary key and
// the user foreign keys are authoritative: concurrent inserts surface
// here as constraint violations, never as duplicate edges.
type FollowRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{pool: pool}
}

func (r *FollowRepository) Insert(ctx context.Context, edge domain.FollowEdge) error {
	_, err := r.pool.Exec(ctx, insertFollowSQL,
		edge.FollowerID.UUID, edge.FollowedID.UUID, edge.CreatedAt)
	if _, ok := classifyUniqueViolation(err); ok {
		return domerrors.ErrAlreadyFollowing
	}
	if isForeignKeyViolation(err) {
		return domerrors.ErrUserNotFound
	}
	return err
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID domain.UserID) (bool, error) {
	tag, err := r.pool.Exec(ctx, deleteFollowSQL, followerID.UUID, followedID.UUID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID domain.UserID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, followExistsSQL, followerID.UUID, followedID.UUID).Scan(&exists)
	return exists, err
}

func (r *FollowRepository) ListFollowers(ctx context.Context, followedID domain.UserID) ([]domain.Summary, error) {
	rows, err := r.pool.Query(ctx, listFollowersSQL, followedID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func (r *FollowRepository) ListFollowing(ctx context.Context, followerID domain.UserID) ([]domain.Summary, error) {
	rows, err := r.pool.Query(ctx, listFollowingSQL, followerID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// Ensure FollowRepository implements ports.FollowRepository.
var _ ports.FollowRepository = (*FollowRepository)(nil)
