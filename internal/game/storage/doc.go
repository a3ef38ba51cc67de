// Package storage defines the persistence contracts for the t20-os core:
// the append-only event ledger and the disposable projection entities
// rebuilt from it.
package storage
