// Package model defines domain entities and data structures for the
// NutriLife Campus API.
//
// The model package contains all struct definitions for domain objects,
// request/response types, and error definitions. Models are used across
// all layers of the application.
//
// # Domain Entities
//
//   - Event: campus event with a fixed seat capacity and a seats_left
//     counter maintained by the allocation engine
//   - Registration: a user's registration for an event, moving from
//     pending to confirmed or waitlist exactly once
//   - Recipe / Rating: campus recipes with atomic rating aggregates
//
// # JSON Serialization
//
// All models use json struct tags for API serialization:
//
//	type Event struct {
//	    ID    string `json:"id"`
//	    Title string `json:"title"`
//	}
//
// # Error Responses
//
// errors.go defines RFC 9457 Problem Details used by the HTTP layer.
package model
