package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/julien-rg/wheelbase-server/internal/application/apptest"
	"github.com/julien-rg/wheelbase-server/internal/application/policy"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

func setup() (*apptest.FakeUserRepo, *apptest.FakeFollowRepo, *Service) {
	users := apptest.NewFakeUserRepo()
	follows := apptest.NewFakeFollowRepo(users)
	return users, follows, NewService(users, policy.NewEngine(users, follows))
}

func addUser(users *apptest.FakeUserRepo, username string, visibility domain.Visibility) *domain.User {
	return users.Add(domain.User{
		ID:         domain.NewUserID(uuid.New()),
		Username:   username,
		Email:      username + "@example.com",
		Visibility: visibility,
	})
}

func strptr(s string) *string { return &s }

func TestGetRespectsPolicy(t *testing.T) {
	users, follows, svc := setup()
	ctx := context.Background()
	alice := addUser(users, "alice", domain.VisibilityPublic)
	bob := addUser(users, "bob", domain.VisibilityFollowersOnly)

	if _, err := svc.Get(ctx, policy.Anonymous(), alice.ID); err != nil {
		t.Errorf("anonymous read of public profile: %v", err)
	}
	if _, err := svc.Get(ctx, policy.Anonymous(), bob.ID); err != domerrors.ErrAccessDenied {
		t.Errorf("anonymous read of private profile = %v, want ErrAccessDenied", err)
	}
	if err := follows.Insert(ctx, domain.FollowEdge{FollowerID: alice.ID, FollowedID: bob.ID}); err != nil {
		t.Fatalf("seed follow: %v", err)
	}
	got, err := svc.Get(ctx, policy.Authenticated(alice.ID), bob.ID)
	if err != nil {
		t.Fatalf("follower read of private profile: %v", err)
	}
	if got.Username != "bob" {
		t.Errorf("username = %q, want bob", got.Username)
	}
}

func TestUpdateOwnerOnly(t *testing.T) {
	users, _, svc := setup()
	ctx := context.Background()
	alice := addUser(users, "alice", domain.VisibilityFollowersOnly)
	bob := addUser(users, "bob", domain.VisibilityFollowersOnly)

	if _, err := svc.Update(ctx, policy.Authenticated(bob.ID), alice.ID, UpdateInput{Bio: strptr("hacked")}); err != domerrors.ErrAccessDenied {
		t.Fatalf("non-owner update = %v, want ErrAccessDenied", err)
	}

	visibility := domain.VisibilityPublic
	updated, err := svc.Update(ctx, policy.Authenticated(alice.ID), alice.ID, UpdateInput{
		Bio:        strptr("car person"),
		Visibility: &visibility,
	})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Bio != "car person" || updated.Visibility != domain.VisibilityPublic {
		t.Errorf("update not applied: %+v", updated)
	}
	// Untouched fields stay put.
	if updated.Username != "alice" {
		t.Errorf("username changed unexpectedly: %q", updated.Username)
	}
}

func TestUpdateUsernameConflict(t *testing.T) {
	users, _, svc := setup()
	ctx := context.Background()
	alice := addUser(users, "alice", domain.VisibilityFollowersOnly)
	addUser(users, "bob", domain.VisibilityFollowersOnly)

	_, err := svc.Update(ctx, policy.Authenticated(alice.ID), alice.ID, UpdateInput{Username: strptr("BOB")})
	if field, ok := domerrors.IsFieldConflict(err); !ok || field != "username" {
		t.Errorf("rename to taken username = %v, want username conflict", err)
	}
}

func TestSearch(t *testing.T) {
	users, _, svc := setup()
	ctx := context.Background()
	addUser(users, "alice", domain.VisibilityPublic)
	addUser(users, "malice", domain.VisibilityFollowersOnly)
	addUser(users, "bob", domain.VisibilityPublic)

	got, err := svc.Search(ctx, "lic")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len(results) = %d, want 2", len(got))
	}

	got, err = svc.Search(ctx, "")
	if err != nil || len(got) != 0 {
		t.Errorf("blank query = %v, %v; want empty, nil", got, err)
	}
}
