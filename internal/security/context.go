package security

import (
	"context"
	"errors"
	"slices"
	"time"
)

// ErrNoActiveSession is returned when the context carries no authentication
// record at all. An anonymous caller still has a record; this error means the
// authentication middleware never ran for the request.
var ErrNoActiveSession = errors.New("no active security session")

type ctxKey struct{}

// Authentication is the record stored in a request context once the caller
// has been identified.
type Authentication struct {
	Principal       Principal
	Authorities     []string
	AuthenticatedAt time.Time
}

// NewAuthentication builds a record for p, granting the principal's own
// authorities.
func NewAuthentication(p Principal) *Authentication {
	var authorities []string
	if p != nil {
		authorities = p.GrantedAuthorities()
	}
	return &Authentication{
		Principal:       p,
		Authorities:     authorities,
		AuthenticatedAt: time.Now().UTC(),
	}
}

// AnonymousAuthentication returns the record for a caller without credentials.
func AnonymousAuthentication() *Authentication {
	return NewAuthentication(AnonymousUser())
}

// WithAuthentication returns a copy of ctx carrying auth.
func WithAuthentication(ctx context.Context, auth *Authentication) context.Context {
	return context.WithValue(ctx, ctxKey{}, auth)
}

// AuthenticationFromContext returns the record stored in ctx, if any.
func AuthenticationFromContext(ctx context.Context) (*Authentication, bool) {
	if ctx == nil {
		return nil, false
	}
	auth, ok := ctx.Value(ctxKey{}).(*Authentication)
	if !ok || auth == nil {
		return nil, false
	}
	return auth, true
}

// GrantedAuthorities returns a copy of the authorities granted to the record.
func (a *Authentication) GrantedAuthorities() []string {
	if a == nil {
		return nil
	}
	return slices.Clone(a.Authorities)
}
