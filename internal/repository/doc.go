// Package repository implements the data access layer for the NutriLife
// Campus API.
//
// Each repository struct handles the SurrealDB operations for one domain
// entity. All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database.Database
//   - Parameterized SurrealQL with $variable syntax
//   - type::record() for safe ID handling
//   - Results parsed and mapped to model structs, with every numeric or
//     timestamp coercion applied exactly once at this boundary
//
// # Guarded transaction scripts
//
// Mutations that span documents (the seat allocation decision, the
// rating aggregate update, registration creation) are issued as single
// BEGIN/COMMIT TRANSACTION scripts with IF ... { THROW ... } guards.
// A fired guard aborts the whole script; guard markers are mapped back
// to typed errors here, so callers see sentinels instead of SurrealQL
// error strings.
package repository
