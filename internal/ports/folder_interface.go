package ports

import (
	"airunote/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

// FolderRepository : SQL слой иерархии. Get методы возвращают nil без ошибки, если записи нет
type FolderRepository interface {
	GetByID(ctx context.Context, exec sqlx.ExtContext, folderID string) (*model.Folder, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, folderID string) (*model.Folder, error)
	GetOrgRoot(ctx context.Context, exec sqlx.ExtContext, orgID string) (*model.Folder, error)
	InsertOrgRoot(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error
	GetUserRoot(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) (*model.Folder, error)
	InsertUserRoot(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error
	DeleteUserRootMapping(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) error
	Create(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error
	Update(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error
	UpdateParent(ctx context.Context, exec sqlx.ExtContext, folderID, parentFolderID string) error
	SetDefaultLens(ctx context.Context, exec sqlx.ExtContext, folderID string, lensID *string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, folderID string) error
	CountChildren(ctx context.Context, exec sqlx.ExtContext, folderID string) (int, int, error)
	FindAncestorIDs(ctx context.Context, exec sqlx.ExtContext, folderID string, maxDepth int) ([]string, error)
	FindSubtree(ctx context.Context, exec sqlx.ExtContext, rootFolderID string, maxDepth int) ([]model.FolderNode, error)
	ListChildren(ctx context.Context, exec sqlx.ExtContext, folderID string) ([]model.Folder, error)
	ListByOwner(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) ([]model.Folder, error)
}

// HierarchyService : папки и корни, вызывается из handler
type HierarchyService interface {
	EnsureUserRootExists(ctx context.Context, orgID, userID string) (*model.Folder, error)
	CreateFolder(ctx context.Context, orgID, userID string, input model.CreateFolderInput) (*model.Folder, error)
	UpdateFolder(ctx context.Context, orgID, userID, folderID string, input model.UpdateFolderInput) (*model.Folder, error)
	MoveFolder(ctx context.Context, orgID, userID, folderID, newParentID string) (*model.Folder, error)
	DeleteFolder(ctx context.Context, orgID, userID, folderID string) error
	ListFolderTree(ctx context.Context, orgID, userID, folderID string) (*model.FolderNode, error)
}
