package policy

import (
	"context"

	"github.com/julien-rg/wheelbase-server/internal/application/ports"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

// Actor is the identity (or absence thereof) making a request. The zero
// value is anonymous.
type Actor struct {
	userID        domain.UserID
	authenticated bool
}

// Anonymous returns an unauthenticated actor.
func Anonymous() Actor { return Actor{} }

// Authenticated returns an actor proven to be userID by a valid token.
func Authenticated(userID domain.UserID) Actor {
	return Actor{userID: userID, authenticated: true}
}

// ID returns the actor's user id and whether the actor is authenticated.
func (a Actor) ID() (domain.UserID, bool) {
	return a.userID, a.authenticated
}

// Engine decides read and write authorization for user profiles,
// combining the target's visibility setting with the follow graph.
type Engine struct {
	users   ports.UserRepository
	follows ports.FollowRepository
}

func NewEngine(users ports.UserRepository, follows ports.FollowRepository) *Engine {
	return &Engine{users: users, follows: follows}
}

// CanRead reports whether actor may read targetID's profile. The check
// order is significant: existence before visibility, and visibility and
// self-access before any follow-graph query, so anonymous callers are
// decided without touching the graph.
func (e *Engine) CanRead(ctx context.Context, actor Actor, targetID domain.UserID) error {
	target, err := e.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return domerrors.ErrUserNotFound
	}
	if target.Visibility == domain.VisibilityPublic {
		return nil
	}
	actorID, ok := actor.ID()
	if !ok {
		return domerrors.ErrAccessDenied
	}
	if actorID == targetID {
		return nil
	}
	following, err := e.follows.Exists(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if following {
		return nil
	}
	return domerrors.ErrAccessDenied
}

// CanMutate reports whether actor may mutate targetID's profile. Only
// the owner may; visibility and the follow graph play no part.
func (e *Engine) CanMutate(ctx context.Context, actor Actor, targetID domain.UserID) error {
	exists, err := e.users.Exists(ctx, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return domerrors.ErrUserNotFound
	}
	actorID, ok := actor.ID()
	if !ok {
		return domerrors.ErrAccessDenied
	}
	if actorID != targetID {
		return domerrors.ErrAccessDenied
	}
	return nil
}
