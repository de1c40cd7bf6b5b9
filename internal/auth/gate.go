package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
)

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims the gate attached, if any.
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*SessionClaims)
	return c, ok && c != nil
}

// Gate admits a request when its path is allowlisted or it carries a valid
// session token in the cookie or an Authorization: Bearer header.
type Gate struct {
	tokens     *TokenCodec
	cookieName string
	allow      map[string]struct{}
	logger     *zap.SugaredLogger
}

// NewGate builds a gate. allow lists exact request paths that skip the check.
func NewGate(tokens *TokenCodec, cookieName string, allow []string, logger *zap.SugaredLogger) *Gate {
	set := make(map[string]struct{}, len(allow))
	for _, p := range allow {
		set[p] = struct{}{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Gate{tokens: tokens, cookieName: cookieName, allow: set, logger: logger}
}

// Allowed reports whether path bypasses the token check.
func (g *Gate) Allowed(path string) bool {
	_, ok := g.allow[path]
	return ok
}

func (g *Gate) tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(g.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Middleware enforces the gate in front of next.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Allowed(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		token := g.tokenFrom(r)
		if token == "" {
			apperr.WriteHTTP(w, g.logger, apperr.ErrUnauthorized)
			return
		}
		claims, err := g.tokens.Verify(token)
		if err != nil {
			g.logger.Debugw("session rejected", "path", r.URL.Path, "err", err)
			apperr.WriteHTTP(w, g.logger, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
