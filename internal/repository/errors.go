// Package repository implements persistence for every collection the back
// office manages. All durable state lives in a key-value store (Redis in
// production, an in-memory stand-in otherwise). The sentinel errors below
// are shared across repositories so handlers can map failure modes onto
// distinct HTTP responses instead of collapsing everything into a 500.
package repository

import "errors"

// ErrEmailExists is returned when creating or updating a user would violate
// case-insensitive email uniqueness. Handlers translate this into a
// validation error; the store is left untouched.
var ErrEmailExists = errors.New("email already in use")

// ErrUserNotFound is returned by update/delete when the target id does not
// exist. Distinct from a generic failure so clients can render an
// "already deleted" state.
var ErrUserNotFound = errors.New("user not found")

// ErrNotFound is the generic missing-record error for non-user collections
// (quote submissions, newsletter entries).
var ErrNotFound = errors.New("not found")

// ErrKeyMissing is returned by Store.Get when the key has never been
// written. Repositories treat it as "empty collection", not a failure.
var ErrKeyMissing = errors.New("key missing")
