package usecases

import (
	"context"
)

// TransactionManager runs fn inside one database transaction.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PasswordHasher hashes roster passwords. A blank password is generated.
type PasswordHasher interface {
	HashOrGenerate(password string) (plain string, hash string, err error)
}

// RosterImporter imports one staged roster into a distribution.
type RosterImporter interface {
	Execute(ctx context.Context, cmd ImportRosterCommand) (*ImportRosterResult, error)
}
