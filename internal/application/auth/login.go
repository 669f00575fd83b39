package auth

import (
	"context"

	"github.com/julien-rg/wheelbase-server/internal/application/ports"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

type LoginInput struct {
	// UsernameOrEmail is matched against both fields, case-insensitively.
	UsernameOrEmail string
	Password        string
}

type LoginResult struct {
	Token string
	User  *domain.User
}

// Login authenticates a user by username or email and issues a bearer
// token bound to the user id.
type Login struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	issuer ports.TokenIssuer
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer) *Login {
	return &Login{users: users, hasher: hasher, issuer: issuer}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.users.GetByUsernameOrEmail(ctx, input.UsernameOrEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	if !uc.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domerrors.ErrInvalidCredentials
	}
	token, err := uc.issuer.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}
