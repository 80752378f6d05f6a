package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. The concrete type is infra-defined
// (pgx.Tx for Postgres); repositories accept NoTX for the plain pool path.
type Tx interface{}

var NoTX Tx

// TransactionManager executes fn inside a database transaction, passing the
// transaction handle through tx. Repositories called with the same ctx and
// tx take part in the transaction.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
