package ports

import (
	"airunote/internal/model"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type ShareRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, share *model.Share) error
	GetByID(ctx context.Context, exec sqlx.ExtContext, shareID string) (*model.Share, error)
	FindActiveForTarget(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID string, now time.Time) ([]model.Share, error)
	FindByLinkCode(ctx context.Context, exec sqlx.ExtContext, linkCode string) (*model.Share, error)
	LinkCodeExists(ctx context.Context, exec sqlx.ExtContext, linkCode string) (bool, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, shareID string) error
	DeleteForTarget(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID string) ([]string, error)
}

// PasswordHasher : односторонний хэш для паролей ссылок
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type SharingService interface {
	ShareToUser(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID, grantedToUserID string, options model.ShareOptions) (*model.Share, error)
	ShareToOrg(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID string, options model.ShareOptions) (*model.Share, error)
	SharePublic(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID string, options model.ShareOptions) (*model.Share, error)
	ShareViaLink(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID string, password *string, options model.ShareOptions) (*model.Share, error)
	RevokeShare(ctx context.Context, orgID, userID, shareID string) error
	ListShares(ctx context.Context, orgID, userID string, targetType model.TargetType, targetID string) ([]model.Share, error)
	ResolveLink(ctx context.Context, linkCode string, password *string) (*model.LinkResolution, error)
}
