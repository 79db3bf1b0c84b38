package ports

import "context"

// Tx is an opaque transaction handle for repositories. Infrastructure owns
// the concrete type (here, *gorm.DB).
type Tx interface{}

// UnitOfWork is the transaction boundary for multi-write operations.
// Callback style: a returned error rolls back, nil commits. Every mutating
// operation in the core is one serialized transaction; there is no partial
// application.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// WithTxContext stores a transaction handle in context for repositories.
func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext reads a transaction handle from context.
func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
