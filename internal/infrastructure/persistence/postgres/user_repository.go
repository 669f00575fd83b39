package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/julien-rg/wheelbase-server/internal/application/ports"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

const (
	userColumns = `id, username, email, password_hash, visibility, avatar_url, bio, created_at, updated_at`

	insertUserSQL = `INSERT INTO users (id, username, email, password_hash, visibility, avatar_url, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	getUserByIDSQL       = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	getUserByEmailSQL    = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	getUserByEitherSQL   = `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)`
	userExistsSQL        = `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	updateUserSQL        = `UPDATE users SET username = $1, visibility = $2, avatar_url = $3, bio = $4, updated_at = NOW()
		WHERE id = $5`
	updatePasswordSQL  = `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	searchUsernameSQL  = `SELECT id, username, avatar_url, visibility FROM users
		WHERE username ILIKE '%' || $1 || '%' ORDER BY username LIMIT 50`
)

// UserRepository is the pgx-backed implementation of ports.UserRepository.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, insertUserSQL,
		user.ID.UUID, user.Username, user.Email, user.PasswordHash,
		string(user.Visibility), user.AvatarURL, user.Bio,
		user.CreatedAt, user.UpdatedAt)
	if field, ok := classifyUniqueViolation(err); ok {
		return domerrors.FieldConflictError{Field: field}
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id.UUID)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, getUserByUsernameSQL, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, getUserByEmailSQL, email)
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, value string) (*domain.User, error) {
	return r.getOne(ctx, getUserByEitherSQL, value)
}

func (r *UserRepository) getOne(ctx context.Context, sql string, arg any) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, sql, arg)
	user, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) Exists(ctx context.Context, id domain.UserID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, userExistsSQL, id.UUID).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	tag, err := r.pool.Exec(ctx, updateUserSQL,
		user.Username, string(user.Visibility), user.AvatarURL, user.Bio, user.ID.UUID)
	if field, ok := classifyUniqueViolation(err); ok {
		return domerrors.FieldConflictError{Field: field}
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, updatePasswordSQL, passwordHash, id.UUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SearchByUsername(ctx context.Context, query string) ([]domain.Summary, error) {
	rows, err := r.pool.Query(ctx, searchUsernameSQL, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var visibility string
	err := row.Scan(&u.ID.UUID, &u.Username, &u.Email, &u.PasswordHash,
		&visibility, &u.AvatarURL, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Visibility = domain.Visibility(visibility)
	return &u, nil
}

func scanSummaries(rows pgx.Rows) ([]domain.Summary, error) {
	summaries := make([]domain.Summary, 0)
	for rows.Next() {
		var s domain.Summary
		var visibility string
		if err := rows.Scan(&s.ID.UUID, &s.Username, &s.AvatarURL, &visibility); err != nil {
			return nil, err
		}
		s.Visibility = domain.Visibility(visibility)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Ensure UserRepository implements ports.UserRepository.
var _ ports.UserRepository = (*UserRepository)(nil)
