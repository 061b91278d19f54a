// Package repository implements the MongoDB-backed stores plus the redis
// session store. Sentinel errors defined here let handlers map storage
// failures to HTTP outcomes without inspecting driver error strings.
package repository

import "errors"

// ErrNotFound is returned when a referenced document does not exist.
// Handlers translate it into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique index on users.email. Handlers translate it into a 409 response.
var ErrEmailExists = errors.New("email already exists")
