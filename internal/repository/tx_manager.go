package repository

import (
	"airunote/config"
	"context"

	"github.com/jmoiron/sqlx"
)

type TxManager struct {
	*config.Database
}

func NewTxManager(database *config.Database) *TxManager {
	return &TxManager{database}
}

// BeginTX : открывает транзакцию. rollback после commit безопасен, его можно сразу отложить через defer
func (m *TxManager) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, tx.Rollback, tx.Commit, nil
}
