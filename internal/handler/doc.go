// Package handler provides HTTP request handlers for the NutriLife Campus API.
//
// Each handler struct encapsulates the dependencies needed to serve requests
// for a specific feature area (events, registrations, recipes, reminders).
//
// # Handler Pattern
//
// All handlers follow a consistent pattern:
//
//   - Constructor function (NewXxxHandler) accepts its service dependency
//   - Methods handle specific HTTP endpoints
//   - Response helpers from response.go standardize output format
//   - Errors are mapped to RFC 9457 Problem Details responses via MapServiceError
//
// # Response Format
//
// Handlers use standardized response functions:
//
//   - WriteData: Single resource with optional HATEOAS links
//   - WriteCollection: Paginated list of resources
//   - WriteJSON: Raw JSON response
//   - WriteError: RFC 9457 Problem Details error response
//
// # Authentication
//
// Administrative handlers require authentication via JWT tokens. The auth
// middleware extracts the user ID and makes it available via
// middleware.GetUserID(ctx). Public read endpoints are gated by an API key
// middleware instead.
package handler
