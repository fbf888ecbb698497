package auth

import (
	"context"
	"net/http"
	"strings"
)

// Verifier turns a raw bearer token into verified claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// HS256Verifier checks tokens signed with a shared secret.
type HS256Verifier struct {
	Secret string
}

func (v HS256Verifier) Verify(_ context.Context, raw string) (*Claims, error) {
	return ParseAndVerifyHS256(raw, v.Secret)
}

// JWKSVerifier checks RS256 tokens against keys published at a JWKS endpoint.
type JWKSVerifier struct {
	Keys *JWKSClient
}

func (v JWKSVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	t, err := split(raw)
	if err != nil {
		return nil, err
	}
	key, err := v.Keys.Get(ctx, t.header.Kid)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return verifyRS256(t, key)
}

type ctxKey struct{}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// Authenticate attaches verified claims when a bearer token is present.
// Requests without a token pass through anonymous; an invalid token is 401.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := v.Verify(r.Context(), raw)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
