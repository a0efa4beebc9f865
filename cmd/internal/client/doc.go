// Package client is the client side of keygate: a small HTTP API client,
// a local token store, and the session guard that decides whether a locally
// held token still grants access to the protected area.
package client
