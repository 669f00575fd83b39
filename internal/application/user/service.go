package user

import (
	"context"
	"time"

	"github.com/julien-rg/wheelbase-server/internal/application/policy"
	"github.com/julien-rg/wheelbase-server/internal/application/ports"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

// UpdateInput carries the patchable profile fields; nil means unchanged.
type UpdateInput struct {
	Username   *string
	AvatarURL  *string
	Bio        *string
	Visibility *domain.Visibility
}

// Service reads and mutates user profiles behind the visibility policy.
type Service struct {
	users  ports.UserRepository
	engine *policy.Engine
}

func NewService(users ports.UserRepository, engine *policy.Engine) *Service {
	return &Service{users: users, engine: engine}
}

// Get returns the profile of targetID if the policy allows actor to read it.
func (s *Service) Get(ctx context.Context, actor policy.Actor, targetID domain.UserID) (*domain.User, error) {
	if err := s.engine.CanRead(ctx, actor, targetID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	return user, nil
}

// Update applies the given changes to targetID's profile. Only the owner
// may mutate; a username change re-checks uniqueness.
func (s *Service) Update(ctx context.Context, actor policy.Actor, targetID domain.UserID, input UpdateInput) (*domain.User, error) {
	if err := s.engine.CanMutate(ctx, actor, targetID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	if input.Username != nil && *input.Username != user.Username {
		taken, err := s.users.GetByUsername(ctx, *input.Username)
		if err != nil {
			return nil, err
		}
		if taken != nil {
			return nil, domerrors.FieldConflictError{Field: "username"}
		}
		user.Username = *input.Username
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Visibility != nil && input.Visibility.Valid() {
		user.Visibility = *input.Visibility
	}
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Search returns summaries of users whose username contains query,
// case-insensitively. A blank query matches nothing.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Summary, error) {
	if query == "" {
		return []domain.Summary{}, nil
	}
	return s.users.SearchByUsername(ctx, query)
}
