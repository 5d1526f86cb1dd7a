// Package domain contains the core business entities of the vault
// service: the vault payload, its cached representation, folder index
// records, and the domain error taxonomy. It has no dependencies on
// adapters or infrastructure.
package domain
