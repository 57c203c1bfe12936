package postgres

import (
	"context"
	"fmt"

	"github.com/fjcero/ClearGDPR/internal/model"
)

var _ model.TxManager = (*TxManager)(nil)

// TxManager runs multi-table vault operations inside a single transaction.
type TxManager struct {
	db *Connection
}

func NewTxManager(db *Connection) *TxManager {
	return &TxManager{
		db: db,
	}
}

// RunInTx begins a transaction, hands fn a set of stores bound to it and
// commits when fn returns nil. Any error from fn rolls the transaction back.
func (m *TxManager) RunInTx(ctx context.Context, fn func(tx model.TxStores) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	stores := model.TxStores{
		Subjects:      NewSubjectRepository(tx),
		Keys:          NewKeyRepository(tx),
		Associations:  NewAssociationRepository(tx),
		ErasureEvents: NewErasureEventRepository(tx),
	}

	if err := fn(stores); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
