package ports

import (
	"airunote/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

// DocumentRepository : SQL слой документов. Методы List* и *Meta* никогда не читают содержимое
type DocumentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error
	GetByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.Document, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.Document, error)
	GetMetaByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.DocumentMeta, error)
	UpdateCanonicalContent(ctx context.Context, exec sqlx.ExtContext, documentID, content string) error
	UpdateSharedContent(ctx context.Context, exec sqlx.ExtContext, documentID string, content *string) error
	AcceptSharedContent(ctx context.Context, exec sqlx.ExtContext, documentID string) error
	Rename(ctx context.Context, exec sqlx.ExtContext, documentID, name string) error
	Move(ctx context.Context, exec sqlx.ExtContext, documentID, folderID string) error
	UpdateAttributes(ctx context.Context, exec sqlx.ExtContext, documentID string, attributes model.JSONMap) error
	Delete(ctx context.Context, exec sqlx.ExtContext, documentID string) error
	ListMetaByFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) ([]model.DocumentMeta, error)
	ListMetaByFolders(ctx context.Context, exec sqlx.ExtContext, folderIDs []string) ([]model.DocumentMeta, error)
	ListMetaByOwner(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) ([]model.DocumentMeta, error)
	QueryMeta(ctx context.Context, exec sqlx.ExtContext, filter model.DocumentFilter) ([]model.DocumentMeta, error)
}

// RevisionRepository : история содержимого, только добавление
type RevisionRepository interface {
	Append(ctx context.Context, exec sqlx.ExtContext, revision *model.Revision) error
	ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentID string) ([]model.Revision, error)
}

// AuditRepository : журнал разрушающих действий
type AuditRepository interface {
	Record(ctx context.Context, exec sqlx.ExtContext, entry *model.AuditLog) error
}

type DocumentService interface {
	CreateDocument(ctx context.Context, orgID, userID string, input model.CreateDocumentInput) (*model.Document, error)
	GetDocument(ctx context.Context, orgID, userID, documentID string) (*model.DocumentView, error)
	RenameDocument(ctx context.Context, orgID, userID, documentID, name string) (*model.DocumentMeta, error)
	MoveDocument(ctx context.Context, orgID, userID, documentID, folderID string) (*model.DocumentMeta, error)
	UpdateDocumentAttributes(ctx context.Context, orgID, userID, documentID string, attributes model.JSONMap) (*model.DocumentMeta, error)
	DeleteDocument(ctx context.Context, orgID, userID, documentID string) error
	CreateAttachmentUploadURL(ctx context.Context, orgID, userID, documentID, filename string) (*model.AttachmentURL, error)
	CreateAttachmentDownloadURL(ctx context.Context, orgID, userID, documentID, key string) (*model.AttachmentURL, error)
}

// ContentService : canonical и shared содержимое с ревизиями
type ContentService interface {
	UpdateDocumentContent(ctx context.Context, orgID, userID, documentID, content string) (model.ContentType, error)
	UpdateCanonicalContent(ctx context.Context, orgID, userID, documentID, content string) error
	UpdateSharedContent(ctx context.Context, orgID, userID, documentID, content string) error
	AcceptSharedIntoCanonical(ctx context.Context, orgID, userID, documentID string) error
	RevertSharedToCanonical(ctx context.Context, orgID, userID, documentID string) error
	ListRevisions(ctx context.Context, orgID, userID, documentID string) ([]model.Revision, error)
}

// VaultService : операции над всем хранилищем пользователя в организации
type VaultService interface {
	DeleteUserVault(ctx context.Context, orgID, userID, confirmationToken string) (*model.VaultDeletion, error)
	GetFullMetadata(ctx context.Context, orgID, userID string) (*model.FullMetadata, error)
}
