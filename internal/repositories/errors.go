// Package repositories defines the data-access layer. The sentinel
// errors below are reused across repositories and services so that
// handlers can map domain failures to HTTP statuses without string
// matching.
package repositories

import "errors"

// ErrNotFound is returned when the requested record does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert would violate a uniqueness
// rule, such as favoriting an article twice. Handlers translate this
// into an HTTP 400 response.
var ErrDuplicate = errors.New("duplicate record")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not allowed to touch, such as reading reports
// without superuser rights. Handlers translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")
