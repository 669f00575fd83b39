package auth

import (
	"context"

	"github.com/julien-rg/wheelbase-server/internal/application/ports"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

type ChangePasswordInput struct {
	UserID      domain.UserID
	OldPassword string
	NewPassword string
}

// ChangePassword replaces a user's password after verifying the current
// one. Ownership is the caller's responsibility (policy CanMutate).
type ChangePassword struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewChangePassword(users ports.UserRepository, hasher ports.PasswordHasher) *ChangePassword {
	return &ChangePassword{users: users, hasher: hasher}
}

func (uc *ChangePassword) Execute(ctx context.Context, input ChangePasswordInput) error {
	user, err := uc.users.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domerrors.ErrUserNotFound
	}
	if !uc.hasher.Verify(input.OldPassword, user.PasswordHash) {
		return domerrors.ErrInvalidCredentials
	}
	hash, err := uc.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, input.UserID, hash)
}
