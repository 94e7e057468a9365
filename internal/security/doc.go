// Package security exposes read-only accessors over the authentication
// record that the HTTP layer attaches to each request context.
//
// This package answers three questions for the current request:
//   - who is logged in (CurrentPrincipal, CurrentUser, CurrentLogin)
//   - is anyone authenticated (IsAuthenticated)
//   - does the caller hold an authority (HasAuthority, HasAnyAuthority)
//
// Token validation and population of the record happen elsewhere
// (see the token and middleware packages). Nothing here mutates the record.
package security
