// Package apptest provides in-memory fakes of the persistence ports for
// use case and policy tests.
package apptest

import (
	"context"
	"strings"
	"time"

	"github.com/julien-rg/wheelbase-server/internal/application/ports"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

// FakeUserRepo implements ports.UserRepository over a map.
type FakeUserRepo struct {
	Users map[domain.UserID]*domain.User
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{Users: make(map[domain.UserID]*domain.User)}
}

// Add stores a copy of user and returns it.
func (r *FakeUserRepo) Add(user domain.User) *domain.User {
	u := user
	r.Users[u.ID] = &u
	return &u
}

func (r *FakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, u := range r.Users {
		if strings.EqualFold(u.Username, user.Username) {
			return domerrors.FieldConflictError{Field: "username"}
		}
		if strings.EqualFold(u.Email, user.Email) {
			return domerrors.FieldConflictError{Field: "email"}
		}
	}
	cp := *user
	r.Users[user.ID] = &cp
	return nil
}

func (r *FakeUserRepo) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	u, ok := r.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *FakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range r.Users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *FakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *FakeUserRepo) GetByUsernameOrEmail(ctx context.Context, value string) (*domain.User, error) {
	if u, _ := r.GetByUsername(ctx, value); u != nil {
		return u, nil
	}
	return r.GetByEmail(ctx, value)
}

func (r *FakeUserRepo) Exists(ctx context.Context, id domain.UserID) (bool, error) {
	_, ok := r.Users[id]
	return ok, nil
}

func (r *FakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.Users[user.ID]; !ok {
		return domerrors.ErrUserNotFound
	}
	cp := *user
	r.Users[user.ID] = &cp
	return nil
}

func (r *FakeUserRepo) UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error {
	u, ok := r.Users[id]
	if !ok {
		return domerrors.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *FakeUserRepo) SearchByUsername(ctx context.Context, query string) ([]domain.Summary, error) {
	result := make([]domain.Summary, 0)
	for _, u := range r.Users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			result = append(result, u.Summary())
		}
	}
	return result, nil
}

type edgeKey struct {
	follower domain.UserID
	followed domain.UserID
}

// FakeFollowRepo implements ports.FollowRepository in memory. Users, when
// set, is consulted for summaries and FK-style existence checks.
// InsertErr forces the next Insert to fail, simulating the store-level
// constraint winning a race; Calls counts every method invocation so
// tests can assert the store was never touched.
type FakeFollowRepo struct {
	Users     *FakeUserRepo
	Edges     map[edgeKey]domain.FollowEdge
	InsertErr error
	Calls     int
}

func NewFakeFollowRepo(users *FakeUserRepo) *FakeFollowRepo {
	return &FakeFollowRepo{Users: users, Edges: make(map[edgeKey]domain.FollowEdge)}
}

func (r *FakeFollowRepo) Insert(ctx context.Context, edge domain.FollowEdge) error {
	r.Calls++
	if r.InsertErr != nil {
		err := r.InsertErr
		r.InsertErr = nil
		return err
	}
	if r.Users != nil {
		if _, ok := r.Users.Users[edge.FollowerID]; !ok {
			return domerrors.ErrUserNotFound
		}
		if _, ok := r.Users.Users[edge.FollowedID]; !ok {
			return domerrors.ErrUserNotFound
		}
	}
	key := edgeKey{edge.FollowerID, edge.FollowedID}
	if _, ok := r.Edges[key]; ok {
		return domerrors.ErrAlreadyFollowing
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now()
	}
	r.Edges[key] = edge
	return nil
}

func (r *FakeFollowRepo) Delete(ctx context.Context, followerID, followedID domain.UserID) (bool, error) {
	r.Calls++
	key := edgeKey{followerID, followedID}
	if _, ok := r.Edges[key]; !ok {
		return false, nil
	}
	delete(r.Edges, key)
	return true, nil
}

func (r *FakeFollowRepo) Exists(ctx context.Context, followerID, followedID domain.UserID) (bool, error) {
	r.Calls++
	_, ok := r.Edges[edgeKey{followerID, followedID}]
	return ok, nil
}

func (r *FakeFollowRepo) ListFollowers(ctx context.Context, followedID domain.UserID) ([]domain.Summary, error) {
	r.Calls++
	result := make([]domain.Summary, 0)
	for key := range r.Edges {
		if key.followed == followedID {
			if u, ok := r.Users.Users[key.follower]; ok {
				result = append(result, u.Summary())
			}
		}
	}
	return result, nil
}

func (r *FakeFollowRepo) ListFollowing(ctx context.Context, followerID domain.UserID) ([]domain.Summary, error) {
	r.Calls++
	result := make([]domain.Summary, 0)
	for key := range r.Edges {
		if key.follower == followerID {
			if u, ok := r.Users.Users[key.followed]; ok {
				result = append(result, u.Summary())
			}
		}
	}
	return result, nil
}

// Ensure the fakes satisfy the ports.
var (
	_ ports.UserRepository   = (*FakeUserRepo)(nil)
	_ ports.FollowRepository = (*FakeFollowRepo)(nil)
)
