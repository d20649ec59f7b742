package ports

import (
	"airunote/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

type LensRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, lens *model.Lens) error
	GetByID(ctx context.Context, exec sqlx.ExtContext, lensID string) (*model.Lens, error)
	GetDefaultForFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) (*model.Lens, error)
	ListByFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) ([]model.Lens, error)
	ListDesktop(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) ([]model.Lens, error)
	Update(ctx context.Context, exec sqlx.ExtContext, lens *model.Lens) error
	ReplaceMetadata(ctx context.Context, exec sqlx.ExtContext, lensID string, metadata model.LensMetadata) error
	ClearDefaultForFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) error
	SetDefault(ctx context.Context, exec sqlx.ExtContext, lensID string) error
	MergeMetadata(ctx context.Context, exec sqlx.ExtContext, lensID string, path []string, patch map[string]any) error
	Delete(ctx context.Context, exec sqlx.ExtContext, lensID string) error
	DeleteDesktopByOwner(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) error
}

type LensItemRepository interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, items []model.LensItem) error
	ListByLens(ctx context.Context, exec sqlx.ExtContext, lensID string) ([]model.LensItem, error)
	CopyToLens(ctx context.Context, exec sqlx.ExtContext, fromLensID, toLensID string) error
	DeleteByEntity(ctx context.Context, exec sqlx.ExtContext, entityType model.TargetType, entityID string) error
}

type LensService interface {
	CreateFolderLens(ctx context.Context, orgID, userID, folderID string, input model.LensInput) (*model.Lens, error)
	CreateDesktopLens(ctx context.Context, orgID, userID string, input model.LensInput) (*model.Lens, error)
	UpdateFolderLens(ctx context.Context, orgID, userID, lensID string, update model.LensUpdate) (*model.Lens, error)
	UpdateDesktopLens(ctx context.Context, orgID, userID, lensID string, update model.LensUpdate) (*model.Lens, error)
	SwitchFolderLens(ctx context.Context, orgID, userID, folderID, lensID string) (*model.Lens, error)
	DuplicateLens(ctx context.Context, orgID, userID, lensID, name string) (*model.Lens, error)
	DeleteLens(ctx context.Context, orgID, userID, lensID string) error
	ListFolderLenses(ctx context.Context, orgID, userID, folderID string) ([]model.Lens, error)
	ListDesktopLenses(ctx context.Context, orgID, userID string) ([]model.Lens, error)
	ResolveFolderProjection(ctx context.Context, orgID, userID, folderID string) (*model.Projection, error)
	ResolveLensProjection(ctx context.Context, orgID, userID, lensID string) (*model.Projection, error)
	UpdateCanvasPositions(ctx context.Context, orgID, userID, lensID string, updates []model.CanvasPositionUpdate) error
	UpdateBoardCard(ctx context.Context, orgID, userID, lensID string, update model.BoardCardUpdate) error
	UpdateBoardLanes(ctx context.Context, orgID, userID, lensID string, lanes []model.BoardLane) error
	UpdateBatchLayout(ctx context.Context, orgID, userID, lensID string, batch model.BatchLayoutUpdate) error
	UpsertLensItems(ctx context.Context, orgID, userID, lensID string, items []model.LensItem) ([]model.LensItem, error)
}
