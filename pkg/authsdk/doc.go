// Package authsdk is a client for the galleria auth service. It covers
// the unauthenticated OAuth2 surface: building authorization URLs,
// exchanging authorization codes with PKCE, and fetching the JWKS used
// to verify access tokens.
//
// The error types in this package are shared with the server side so
// handlers and clients agree on the wire format.
package authsdk
