// Package store holds the process-local collections behind the ledger service.
// None of the stores synchronise access; the owning service serialises all calls.
package store

import "errors"

var ErrNotFound = errors.New("not found")
