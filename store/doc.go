// Package store archives decoded reveal outcomes so they can be served
// without refetching the reveal transaction.
package store
