// Package jwt provides RS256 access token signing and validation on top
// of github.com/golang-jwt/jwt/v5.
//
// The Service is constructed from PEM key file paths. The API server
// typically loads only the public key and validates tokens issued by the
// admin-token tool, which holds the private key.
package jwt
