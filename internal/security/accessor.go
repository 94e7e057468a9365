package security

import (
	"context"
	"slices"
)

// CurrentPrincipal returns the principal of the request. It never returns nil:
// without a record or principal an empty *User is returned.
func CurrentPrincipal(ctx context.Context) Principal {
	auth, _ := AuthenticationFromContext(ctx)
	return auth.CurrentPrincipal()
}

// CurrentUser returns the request principal as a *User, or an empty *User when
// the context has none.
func CurrentUser(ctx context.Context) *User {
	auth, _ := AuthenticationFromContext(ctx)
	return auth.CurrentUser()
}

// CurrentLogin returns the login of the request principal, or "".
func CurrentLogin(ctx context.Context) string {
	return CurrentPrincipal(ctx).Name()
}

// IsAuthenticated reports whether the request carries at least one authority
// other than AnonymousAuthority. ErrNoActiveSession is returned when the
// context has no record to inspect.
func IsAuthenticated(ctx context.Context) (bool, error) {
	auth, ok := AuthenticationFromContext(ctx)
	if !ok {
		return false, ErrNoActiveSession
	}
	return auth.IsAuthenticated(), nil
}

// HasAuthority reports whether the request principal holds authority.
func HasAuthority(ctx context.Context, authority string) bool {
	auth, _ := AuthenticationFromContext(ctx)
	return auth.HasAuthority(authority)
}

// HasAnyAuthority reports whether the request principal holds at least one of
// authorities.
func HasAnyAuthority(ctx context.Context, authorities ...string) bool {
	auth, _ := AuthenticationFromContext(ctx)
	return auth.HasAnyAuthority(authorities...)
}

// CurrentPrincipal is the nil-safe form of the package-level function.
func (a *Authentication) CurrentPrincipal() Principal {
	if a == nil || a.Principal == nil {
		return &User{}
	}
	return a.Principal
}

// CurrentUser is the nil-safe form of the package-level function.
func (a *Authentication) CurrentUser() *User {
	if a == nil {
		return &User{}
	}
	if u, ok := a.Principal.(*User); ok && u != nil {
		return u
	}
	return &User{}
}

// IsAuthenticated reports whether the record grants a non-anonymous authority.
// A nil record is not authenticated.
func (a *Authentication) IsAuthenticated() bool {
	if a == nil {
		return false
	}
	for _, authority := range a.Authorities {
		if authority != AnonymousAuthority {
			return true
		}
	}
	return false
}

// HasAuthority reports whether the record's principal holds authority.
// The empty authority never matches.
func (a *Authentication) HasAuthority(authority string) bool {
	if a == nil || a.Principal == nil || authority == "" {
		return false
	}
	return slices.Contains(a.Principal.GrantedAuthorities(), authority)
}

// HasAnyAuthority reports whether the record's principal holds any of
// authorities. An empty list never matches.
func (a *Authentication) HasAnyAuthority(authorities ...string) bool {
	if a == nil || a.Principal == nil || len(authorities) == 0 {
		return false
	}
	for _, granted := range a.Principal.GrantedAuthorities() {
		if slices.Contains(authorities, granted) {
			return true
		}
	}
	return false
}
