package backend

import "context"

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx. Every backend call reads it from there.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)

	return token, ok && token != ""
}
