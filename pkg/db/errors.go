// Package errors pkg/db/errors.go provides errors for the db package.

package db

import "errors"

var (
	// Core database errors.

	ErrDatabaseError = errors.New("database error")
	ErrNotFound      = errors.New("not found")

	// Invariant violations.

	ErrOpenJobExists = errors.New("printer already has an open job")
)
