// Package memory provides in-memory implementations of the repository
// interfaces. They back the service tests and the dev profile when no
// Postgres DSN is configured.
package memory

import (
	"context"
	"sync"
)

// TxManager serializes transactional blocks behind one mutex. The store is
// process-local, so a coarse critical section is enough to keep lifecycle
// mutations atomic with respect to each other.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager builds the in-memory transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

type txContextKey struct{}

// WithinTx runs fn under the store-wide mutex, joining an enclosing block
// instead of deadlocking. Rollback is not simulated; callers treat a returned
// error as an aborted operation.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txContextKey{}) != nil {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, txContextKey{}, struct{}{}))
}
