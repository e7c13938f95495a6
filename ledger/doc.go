// Package ledger defines the ledger transport and signing capabilities the
// poll client depends on, an RPC-backed transport, and assembly of unsigned
// and signed transactions around built instructions.
package ledger
