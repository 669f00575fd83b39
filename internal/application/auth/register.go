package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/julien-rg/wheelbase-server/internal/application/ports"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	Bio        string
	Visibility domain.Visibility
}

type RegisterResult struct {
	User *domain.User
}

// Register creates a new user with a hashed password. Email and username
// duplicates are pre-checked case-insensitively; the database unique
// indexes remain authoritative and report the same field conflict when a
// concurrent registration wins.
type Register struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewRegister(users ports.UserRepository, hasher ports.PasswordHasher) *Register {
	return &Register{users: users, hasher: hasher}
}

func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if !emailRegex.MatchString(input.Email) {
		return nil, domerrors.ErrInvalidCredentials
	}
	existing, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.FieldConflictError{Field: "email"}
	}
	existing, err = uc.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.FieldConflictError{Field: "username"}
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	visibility := input.Visibility
	if !visibility.Valid() {
		visibility = domain.DefaultVisibility
	}
	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Visibility:   visibility,
		Bio:          input.Bio,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return &RegisterResult{User: user}, nil
}
