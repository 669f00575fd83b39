package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/julien-rg/wheelbase-server/internal/application/apptest"
	"github.com/julien-rg/wheelbase-server/internal/application/auth"
	"github.com/julien-rg/wheelbase-server/internal/application/follow"
	"github.com/julien-rg/wheelbase-server/internal/application/policy"
	"github.com/julien-rg/wheelbase-server/internal/application/user"
	infraauth "github.com/julien-rg/wheelbase-server/internal/infrastructure/auth"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/http/handlers"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/http/middleware"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/security"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	users := apptest.NewFakeUserRepo()
	follows := apptest.NewFakeFollowRepo(users)
	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	issuer, err := infraauth.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	engine := policy.NewEngine(users, follows)
	log := zerolog.Nop()
	usersHandler := handlers.NewUsersHandler(
		auth.NewRegister(users, hasher),
		auth.NewLogin(users, hasher, issuer),
		auth.NewChangePassword(users, hasher),
		user.NewService(users, engine),
		follow.NewService(users, follows),
		engine,
		log,
	)
	return NewRouter(RouterConfig{
		UsersHandler: usersHandler,
		Actor:        middleware.NewActorResolver(issuer).Handler,
		Log:          log,
	})
}

func doJSON(t *testing.T, srv http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func registerUser(t *testing.T, srv http.Handler, username, visibility string) string {
	t.Helper()
	body := map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cretpass",
	}
	if visibility != "" {
		body["visibility"] = visibility
	}
	rec, decoded := doJSON(t, srv, http.MethodPost, "/api/users/register", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", username, rec.Code, rec.Body.String())
	}
	return decoded["id"].(string)
}

func loginUser(t *testing.T, srv http.Handler, username string) string {
	t.Helper()
	rec, decoded := doJSON(t, srv, http.MethodPost, "/api/users/login", "", map[string]string{
		"username_or_email": username,
		"password":          "s3cretpass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", username, rec.Code, rec.Body.String())
	}
	return decoded["token"].(string)
}

func TestVisibilityScenario(t *testing.T) {
	srv := newTestServer(t)

	aliceID := registerUser(t, srv, "alice", "PUBLIC")
	bobID := registerUser(t, srv, "bob", "") // defaults to FOLLOWERS_ONLY

	// Anonymous can read the public profile.
	rec, _ := doJSON(t, srv, http.MethodGet, "/api/users/"+aliceID, "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous read of alice: status %d, want 200", rec.Code)
	}
	// Anonymous is denied the followers-only profile.
	rec, _ = doJSON(t, srv, http.MethodGet, "/api/users/"+bobID, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous read of bob: status %d, want 401", rec.Code)
	}

	aliceToken := loginUser(t, srv, "alice")

	// Not yet a follower: still denied.
	rec, _ = doJSON(t, srv, http.MethodGet, "/api/users/"+bobID, aliceToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("stranger read of bob: status %d, want 401", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/users/follow", aliceToken, map[string]string{"followed_id": bobID})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("follow: status %d: %s", rec.Code, rec.Body.String())
	}

	rec, decoded := doJSON(t, srv, http.MethodGet, "/api/users/"+bobID, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("follower read of bob: status %d, want 200", rec.Code)
	}
	if decoded["username"] != "bob" {
		t.Errorf("profile username = %v, want bob", decoded["username"])
	}
}

func TestFollowEndpointStatuses(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice", "")
	bobID := registerUser(t, srv, "bob", "")
	aliceToken := loginUser(t, srv, "alice")

	// Anonymous follow is rejected.
	rec, _ := doJSON(t, srv, http.MethodPost, "/api/users/follow", "", map[string]string{"followed_id": bobID})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous follow: status %d, want 401", rec.Code)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/users/follow", aliceToken, map[string]string{"followed_id": bobID})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("follow: status %d", rec.Code)
	}
	// Duplicate follow conflicts.
	rec, _ = doJSON(t, srv, http.MethodPost, "/api/users/follow", aliceToken, map[string]string{"followed_id": bobID})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate follow: status %d, want 409", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/users/%s/followers", bobID), nil)
	listRec := httptest.NewRecorder()
	srv.ServeHTTP(listRec, req)
	if listRec.Code != http.StatusOK {
		t.Fatalf("followers: status %d", listRec.Code)
	}
	var followers []map[string]interface{}
	if err := json.Unmarshal(listRec.Body.Bytes(), &followers); err != nil {
		t.Fatalf("decode followers: %v", err)
	}
	if len(followers) != 1 || followers[0]["username"] != "alice" {
		t.Errorf("followers = %v, want [alice]", followers)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/users/unfollow", aliceToken, map[string]string{"followed_id": bobID})
	if rec.Code != http.StatusNoContent {
		t.Errorf("unfollow: status %d, want 204", rec.Code)
	}
	rec, _ = doJSON(t, srv, http.MethodPost, "/api/users/unfollow", aliceToken, map[string]string{"followed_id": bobID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unfollow without edge: status %d, want 400", rec.Code)
	}
}

func TestUpdateRequiresOwnership(t *testing.T) {
	srv := newTestServer(t)
	aliceID := registerUser(t, srv, "alice", "")
	registerUser(t, srv, "bob", "")
	bobToken := loginUser(t, srv, "bob")
	aliceToken := loginUser(t, srv, "alice")

	rec, _ := doJSON(t, srv, http.MethodPut, "/api/users/"+aliceID, bobToken, map[string]string{"bio": "hacked"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("non-owner update: status %d, want 401", rec.Code)
	}

	rec, decoded := doJSON(t, srv, http.MethodPut, "/api/users/"+aliceID, aliceToken, map[string]string{"bio": "car person"})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: status %d: %s", rec.Code, rec.Body.String())
	}
	if decoded["bio"] != "car person" {
		t.Errorf("bio = %v, want updated", decoded["bio"])
	}
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice", "")

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "ALICE",
		"email":    "other@example.com",
		"password": "s3cretpass",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("case-variant username: status %d, want 409", rec.Code)
	}
}
