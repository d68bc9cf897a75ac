package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/server"
)

type actorKey struct{}

// ActorFromContext returns the authenticated actor, or nil for anonymous
// requests.
func ActorFromContext(ctx context.Context) *Claims {
	if c, ok := ctx.Value(actorKey{}).(*Claims); ok {
		return c
	}
	return nil
}

// WithActor returns ctx carrying claims.
func WithActor(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, actorKey{}, claims)
}

// Route is a method and exact path that requires an actor.
type Route struct {
	Method string
	Path   string
}

// ProtectedRoutes are the settings endpoints that need an actor. Theme reads
// and the live stream stay public.
var ProtectedRoutes = []Route{
	{Method: http.MethodPatch, Path: "/api/v1/settings/site"},
	{Method: http.MethodGet, Path: "/api/v1/settings/site/history"},
}

// Middleware requires a valid bearer token on the protected routes and
// stores its claims in the request context. Other requests pass through
// untouched.
func Middleware(tokens *TokenService, protected []Route) server.Middleware {
	guarded := make(map[Route]bool, len(protected))
	for _, r := range protected {
		guarded[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !guarded[Route{Method: r.Method, Path: r.URL.Path}] {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := bearerToken(r)
			if !ok {
				unauthorized(w, r, "missing or invalid authorization header")
				return
			}
			claims, err := tokens.ValidateAccessToken(tokenString)
			if err != nil {
				unauthorized(w, r, "invalid or expired access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="plunge"`)
	server.Unauthorized(w, detail, r.URL.Path)
}
