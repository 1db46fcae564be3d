package shared

import "context"

// TransactionManager runs a function atomically. Repository calls made with
// the context passed to the callback join the same transaction; the
// transaction commits when the callback returns nil and rolls back otherwise.
// Nested calls join the enclosing transaction.
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
