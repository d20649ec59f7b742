package ports

import (
	"airunote/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

// AccessResolver : вычисление прав принципала на объект внутри транзакции вызывающего
type AccessResolver interface {
	CheckAccessWith(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID, userID, orgID string) (model.Access, error)
}
