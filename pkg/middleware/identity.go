package middleware

import (
	"context"
	"net/http"
)

// Identity is the caller's asserted identity from trusted request
// metadata. Authentication happens upstream; these headers arrive from a
// trusted gateway and are never re-derived here.
type Identity struct {
	Email        string
	Role         string
	Organization string
}

// Header names carrying the asserted identity.
const (
	HeaderUserEmail    = "X-User-Email"
	HeaderUserRole     = "X-User-Role"
	HeaderOrganization = "X-User-Organization"
)

type identityKey struct{}

// ExtractIdentity returns middleware that reads identity headers into the
// request context. Missing headers yield a zero Identity; enforcement is
// the handler's concern.
func ExtractIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := Identity{
				Email:        r.Header.Get(HeaderUserEmail),
				Role:         r.Header.Get(HeaderUserRole),
				Organization: r.Header.Get(HeaderOrganization),
			}
			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the identity stored in the context, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
