package middleware

import (
	"context"

	"github.com/julien-rg/wheelbase-server/internal/application/policy"
)

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor injects the resolved actor into the context.
func WithActor(ctx context.Context, actor policy.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the actor from the context. Requests that did
// not pass through the actor middleware are anonymous.
func ActorFromContext(ctx context.Context) policy.Actor {
	v := ctx.Value(actorContextKey)
	if v == nil {
		return policy.Anonymous()
	}
	actor, ok := v.(policy.Actor)
	if !ok {
		return policy.Anonymous()
	}
	return actor
}
