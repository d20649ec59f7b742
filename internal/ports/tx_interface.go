package ports

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// TxManager : единица работы. Вызывающий получает exec транзакции и сам решает, коммитить или откатить
type TxManager interface {
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}
