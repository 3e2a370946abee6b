package visibility

import "context"

type scopeKey struct{}

// ContextWithScope carries the caller's record scope to the service layer.
func ContextWithScope(ctx context.Context, scope RecordScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the scope stored by ContextWithScope. Contexts
// without one, such as background jobs and seeding, see every record.
func ScopeFromContext(ctx context.Context) RecordScope {
	if scope, ok := ctx.Value(scopeKey{}).(RecordScope); ok && scope != nil {
		return scope
	}
	return AllowAll
}

// ScopedContext attaches the scope of role to ctx. Unknown roles get a
// deny-all scope.
func (g *Gate) ScopedContext(ctx context.Context, role string) context.Context {
	r, _ := ParseRole(role)
	return ContextWithScope(ctx, g.RecordScopeFor(r))
}
