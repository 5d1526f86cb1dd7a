// Package httpapi exposes the vault service over HTTP: chat
// completion with vault context, vault retrieval and refresh, admin
// operations, and cache purge.
package httpapi
