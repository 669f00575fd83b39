package middleware

import (
	"net/http"
	"strings"

	"github.com/julien-rg/wheelbase-server/internal/application/policy"
	"github.com/julien-rg/wheelbase-server/internal/application/ports"
)

// ActorResolver turns an optional bearer token into an actor in the
// request context. It never rejects a request: a missing, malformed or
// invalid token all resolve to the anonymous actor, so an attacker
// cannot tell a rejected token from no token. Per-route policy checks
// decide what the actor may do.
type ActorResolver struct {
	issuer ports.TokenIssuer
}

func NewActorResolver(issuer ports.TokenIssuer) *ActorResolver {
	return &ActorResolver{issuer: issuer}
}

func (m *ActorResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := policy.Anonymous()
		if token, ok := bearerToken(r); ok && m.issuer.Verify(token) {
			if userID, err := m.issuer.Subject(token); err == nil {
				actor = policy.Authenticated(userID)
			}
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(auth, "Bearer "), true
}
