package postgres

import (
	"context"
)

// txManagerKey is the context key under which the server installs the
// process-wide transaction manager.
type txManagerKey struct{}

// WithTxManager attaches the transaction manager to the context. The HTTP
// layer does this once per request; workers and CLIs do it at startup.
func WithTxManager(ctx context.Context, txm *TxManager) context.Context {
	return context.WithValue(ctx, txManagerKey{}, txm)
}

// GetTxManager returns the TxManager from context, or nil if absent.
func GetTxManager(ctx context.Context) *TxManager {
	txm, _ := ctx.Value(txManagerKey{}).(*TxManager)
	return txm
}

// MustGetTxManager returns *postgres.TxManager from context.
// It is meant for infrastructure code that needs access to GetQuerier()/GetTx().
//
// Domain code should depend only on internal/core/tx.Manager.
func MustGetTxManager(ctx context.Context) *TxManager {
	txm := GetTxManager(ctx)
	if txm == nil {
		panic("TxManager is not attached to context")
	}
	return txm
}
