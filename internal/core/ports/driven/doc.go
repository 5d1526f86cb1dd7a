// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the document source, the key-value
// cache, the completion APIs, and the fallback payload store.
package driven
