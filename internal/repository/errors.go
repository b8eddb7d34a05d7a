// Package repository contains the data access layer, separated from the
// HTTP handlers. This file defines sentinel errors shared across the
// repositories so handlers can translate failures into specific HTTP
// responses: ErrForbidden becomes 403, ErrConflict 409 and the per-entity
// not-found values 404.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// existing state, such as re-awarding a badge a user already holds or
// importing a taxonomy source twice.
var ErrConflict = errors.New("conflict")

// ErrUserNotFound is returned when a user cannot be found.
var ErrUserNotFound = errors.New("user not found")

// ErrAmalgamationNotFound is returned when an amalgamation cannot be found.
var ErrAmalgamationNotFound = errors.New("amalgamation not found")

// ErrContributionNotFound is returned when a contribution cannot be found.
var ErrContributionNotFound = errors.New("contribution not found")

// ErrBadgeNotFound is returned when a badge cannot be found.
var ErrBadgeNotFound = errors.New("badge not found")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when registering with a username that is
// already taken.
var ErrUsernameExists = errors.New("username already exists")
