package follow

import (
	"context"
	"fmt"
	"time"

	"github.com/julien-rg/wheelbase-server/internal/application/ports"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

// Service orchestrates follow and unfollow against the follow graph.
// Uniqueness of an edge is decided by the store's constraint on insert;
// the existence pre-checks only improve the error detail.
type Service struct {
	users   ports.UserRepository
	follows ports.FollowRepository
}

func NewService(users ports.UserRepository, follows ports.FollowRepository) *Service {
	return &Service{users: users, follows: follows}
}

// Follow creates the edge actorID -> targetID.
func (s *Service) Follow(ctx context.Context, actorID, targetID domain.UserID) error {
	if actorID == targetID {
		return domerrors.ErrCannotFollowSelf
	}
	if err := s.checkEndpoints(ctx, actorID, targetID); err != nil {
		return err
	}
	return s.follows.Insert(ctx, domain.FollowEdge{
		FollowerID: actorID,
		FollowedID: targetID,
		CreatedAt:  time.Now(),
	})
}

// Unfollow removes the edge actorID -> targetID.
func (s *Service) Unfollow(ctx context.Context, actorID, targetID domain.UserID) error {
	if actorID == targetID {
		return domerrors.ErrCannotUnfollowSelf
	}
	if err := s.checkEndpoints(ctx, actorID, targetID); err != nil {
		return err
	}
	deleted, err := s.follows.Delete(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return domerrors.ErrNotFollowing
	}
	return nil
}

// Followers returns summaries of users following userID.
func (s *Service) Followers(ctx context.Context, userID domain.UserID) ([]domain.Summary, error) {
	if err := s.checkExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.ListFollowers(ctx, userID)
}

// Following returns summaries of users userID follows.
func (s *Service) Following(ctx context.Context, userID domain.UserID) ([]domain.Summary, error) {
	if err := s.checkExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.ListFollowing(ctx, userID)
}

func (s *Service) checkEndpoints(ctx context.Context, followerID, followedID domain.UserID) error {
	exists, err := s.users.Exists(ctx, followerID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("follower: %w", domerrors.ErrUserNotFound)
	}
	exists, err = s.users.Exists(ctx, followedID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("followed: %w", domerrors.ErrUserNotFound)
	}
	return nil
}

func (s *Service) checkExists(ctx context.Context, userID domain.UserID) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domerrors.ErrUserNotFound
	}
	return nil
}
