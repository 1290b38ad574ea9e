package shared

import "context"

type actorContextKey struct{}

// ContextWithActor stores the acting user identifier in context. The identity
// is caller-asserted; there is no authentication layer in front of it.
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	if actorID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorContextKey{}, actorID)
}

// ActorFromContext extracts the acting user identifier, empty when absent.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}
