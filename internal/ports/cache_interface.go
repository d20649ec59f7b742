package ports

import (
	"airunote/internal/model"
	"context"
)

// LinkCache : Redis слой для разрешения ссылок
type LinkCache interface {
	SetShare(ctx context.Context, share *model.Share) error
	GetShare(ctx context.Context, linkCode string) (*model.Share, error)
	DeleteShares(ctx context.Context, linkCodes ...string) error
}
