package model

import "context"

// TxStores bundles the stores bound to one open transaction. Operations that
// span multiple tables receive it from a TxManager and thread it through
// every storage call, so no store access escapes the transaction.
type TxStores struct {
	Subjects      SubjectStore
	Keys          KeyStore
	Associations  AssociationStore
	ErasureEvents ErasureEventStore
}

// TxManager runs a function inside a single transaction, committing when fn
// returns nil and rolling back otherwise.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(tx TxStores) error) error
}
