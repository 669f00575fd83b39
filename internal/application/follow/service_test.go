package follow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/julien-rg/wheelbase-server/internal/application/apptest"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	domerrors "github.com/julien-rg/wheelbase-server/internal/domain/errors"
)

func setup() (*apptest.FakeUserRepo, *apptest.FakeFollowRepo, *Service) {
	users := apptest.NewFakeUserRepo()
	follows := apptest.NewFakeFollowRepo(users)
	return users, follows, NewService(users, follows)
}

func addUser(users *apptest.FakeUserRepo, username string) domain.UserID {
	u := users.Add(domain.User{
		ID:         domain.NewUserID(uuid.New()),
		Username:   username,
		Email:      username + "@example.com",
		Visibility: domain.DefaultVisibility,
	})
	return u.ID
}

func TestFollowSelfWithoutStoreAccess(t *testing.T) {
	users, follows, svc := setup()
	alice := addUser(users, "alice")

	err := svc.Follow(context.Background(), alice, alice)
	if err != domerrors.ErrCannotFollowSelf {
		t.Fatalf("Follow(self) = %v, want ErrCannotFollowSelf", err)
	}
	if follows.Calls != 0 {
		t.Error("self-follow must be rejected before any store access")
	}
}

func TestFollowLifecycle(t *testing.T) {
	users, _, svc := setup()
	ctx := context.Background()
	alice := addUser(users, "alice")
	bob := addUser(users, "bob")

	if err := svc.Follow(ctx, alice, bob); err != nil {
		t.Fatalf("first follow: %v", err)
	}
	if err := svc.Follow(ctx, alice, bob); err != domerrors.ErrAlreadyFollowing {
		t.Fatalf("second follow = %v, want ErrAlreadyFollowing", err)
	}
	if err := svc.Unfollow(ctx, alice, bob); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if err := svc.Follow(ctx, alice, bob); err != nil {
		t.Fatalf("refollow after unfollow: %v", err)
	}
}

func TestFollowMissingEndpoints(t *testing.T) {
	users, _, svc := setup()
	ctx := context.Background()
	alice := addUser(users, "alice")
	missing := domain.NewUserID(uuid.New())

	err := svc.Follow(ctx, alice, missing)
	if !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Fatalf("follow missing target = %v, want ErrUserNotFound", err)
	}
	err = svc.Follow(ctx, missing, alice)
	if !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Fatalf("follow from missing actor = %v, want ErrUserNotFound", err)
	}
}

func TestFollowConcurrentInsertWins(t *testing.T) {
	// A concurrent caller commits the edge between our pre-check and our
	// insert; the store's unique constraint must be reported faithfully.
	users, follows, svc := setup()
	alice := addUser(users, "alice")
	bob := addUser(users, "bob")

	follows.InsertErr = domerrors.ErrAlreadyFollowing
	err := svc.Follow(context.Background(), alice, bob)
	if err != domerrors.ErrAlreadyFollowing {
		t.Fatalf("Follow under race = %v, want ErrAlreadyFollowing", err)
	}
}

func TestUnfollowErrors(t *testing.T) {
	users, _, svc := setup()
	ctx := context.Background()
	alice := addUser(users, "alice")
	bob := addUser(users, "bob")

	if err := svc.Unfollow(ctx, alice, alice); err != domerrors.ErrCannotUnfollowSelf {
		t.Errorf("Unfollow(self) = %v, want ErrCannotUnfollowSelf", err)
	}
	if err := svc.Unfollow(ctx, alice, bob); err != domerrors.ErrNotFollowing {
		t.Errorf("Unfollow without edge = %v, want ErrNotFollowing", err)
	}
	missing := domain.NewUserID(uuid.New())
	if err := svc.Unfollow(ctx, alice, missing); !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Errorf("Unfollow missing target = %v, want ErrUserNotFound", err)
	}
}

func TestFollowerListings(t *testing.T) {
	users, _, svc := setup()
	ctx := context.Background()
	alice := addUser(users, "alice")
	bob := addUser(users, "bob")
	carol := addUser(users, "carol")

	if got, err := svc.Followers(ctx, bob); err != nil || len(got) != 0 {
		t.Fatalf("Followers of fresh user = %v, %v; want empty, nil", got, err)
	}

	if err := svc.Follow(ctx, alice, bob); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := svc.Follow(ctx, carol, bob); err != nil {
		t.Fatalf("follow: %v", err)
	}

	followers, err := svc.Followers(ctx, bob)
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if len(followers) != 2 {
		t.Errorf("len(followers) = %d, want 2", len(followers))
	}

	following, err := svc.Following(ctx, alice)
	if err != nil {
		t.Fatalf("Following: %v", err)
	}
	if len(following) != 1 || following[0].Username != "bob" {
		t.Errorf("Following(alice) = %v, want [bob]", following)
	}

	if _, err := svc.Followers(ctx, domain.NewUserID(uuid.New())); !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Errorf("Followers of missing user = %v, want ErrUserNotFound", err)
	}
}
