package ledger

import "errors"

var (
	// ErrNotFound means the record is absent or belongs to another owner.
	ErrNotFound = errors.New("not found")

	// ErrAccountArchived rejects new transactions touching an archived account.
	ErrAccountArchived = errors.New("account archived")

	// ErrSameAccount rejects a transfer whose source and destination are equal.
	ErrSameAccount = errors.New("transfer source and destination must differ")

	// ErrInvalidAmount rejects a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrHasHistory rejects hard-deleting an account that has transactions.
	ErrHasHistory = errors.New("account has transaction history")

	// ErrDuplicate rejects a record that collides with a unique key.
	ErrDuplicate = errors.New("already exists")
)
