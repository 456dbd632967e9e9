// Package middleware provides HTTP middleware for the NutriLife Campus API.
//
// Middleware composes via Chain, applied outermost-first:
//
//	handler := middleware.Chain(mux,
//	    middleware.Recovery,
//	    middleware.RequestID,
//	    middleware.Logger,
//	    middleware.CORS(origins),
//	)
//
// Route groups add their own gates on top: the public read surface is
// keyed by APIKey, administrative routes require a JWT via Auth, and
// registration writes go through Idempotency so a retried POST with an
// Idempotency-Key header replays the original response instead of
// creating a duplicate.
package middleware
