// Package service provides business logic for the application.
package service

import (
	"errors"

	"github.com/projectdesk/projectdesk/internal/auth"
)

// Service errors shared across entity services.
var (
	// ErrNotFound is returned both when a record does not exist and
	// when it exists but the caller may not access it. Record IDs are
	// sequential integers; a distinct "forbidden" answer would let
	// callers enumerate which IDs exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation indicates a rejected input value.
	ErrValidation = errors.New("validation failed")
)

// CanAccess decides whether the caller may read or mutate a record with
// the given owner. Rules, in order:
//
//  1. Anonymous callers are denied.
//  2. The owner has full access.
//  3. Admins may access records whose owner is unset. Unowned rows
//     predate ownership; this keeps them reachable without granting
//     admins access to other users' records.
//  4. Everyone else is denied.
func CanAccess(ident *auth.Identity, ownerID *int64) bool {
	if ident == nil {
		return false
	}
	if ownerID != nil {
		return *ownerID == ident.UserID
	}
	return ident.Role.CanAccessUnowned()
}
