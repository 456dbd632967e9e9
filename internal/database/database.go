// Package database provides the database abstraction layer for the
// NutriLife Campus API.
//
// This package defines the Database interface that abstracts SurrealDB
// operations, allowing for clean separation between business logic and
// data access.
//
// # Interface Design
//
// The Database interface provides three query methods:
//   - Query: Returns multiple results (for SELECT queries returning lists)
//   - QueryOne: Returns a single result (for SELECT by ID)
//   - Execute: No return value (for CREATE/UPDATE/DELETE mutations)
//
// # Transactions
//
// Multi-statement atomicity is expressed as transaction scripts: a single
// Query call whose text wraps its statements in BEGIN TRANSACTION /
// COMMIT TRANSACTION, with IF ... { THROW ... } guards aborting the whole
// block when a precondition no longer holds. A thrown guard surfaces as
// ErrConflict, which callers treat as "re-read and retry". The seat
// allocation engine depends on this contract.
//
// # Error Handling
//
// Standard errors are defined for common failure cases. Use errors.Is()
// to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
package database

import (
	"context"
	"errors"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a transaction guard fired: a concurrent writer
	// invalidated a precondition between read and write. Callers retry.
	ErrConflict = errors.New("transaction conflict")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")
)

// Database defines the interface for database operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database configuration
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
