package ledger

import "errors"

var (
	// ErrSchemaMismatch indicates the database schema version does not
	// match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrColumnMismatch indicates the inventory table does not carry
	// the exact expected column set.
	ErrColumnMismatch = errors.New("inventory column set mismatch")
	// ErrEmptyInventory indicates the tidy stage was started without a
	// collected inventory.
	ErrEmptyInventory = errors.New("inventory ledger is empty")
)
