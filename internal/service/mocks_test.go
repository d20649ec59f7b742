package service_test

import (
	"airunote/internal/model"
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

// fakeTx : заглушка sqlx.ExtContext, репозитории в тестах замоканы и в неё не ходят
type fakeTx struct{}

func (f *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (f *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (f *fakeTx) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, nil
}
func (f *fakeTx) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return &sqlx.Row{}
}
func (f *fakeTx) DriverName() string         { return "fake" }
func (f *fakeTx) Rebind(query string) string { return query }
func (f *fakeTx) BindNamed(query string, arg interface{}) (string, []interface{}, error) {
	return "", nil, nil
}

// MockTxManager : считает коммиты и откаты, чтобы проверять границы транзакций
type MockTxManager struct {
	exec      *fakeTx
	commits   int
	rollbacks int
}

func newMockTxManager() *MockTxManager {
	return &MockTxManager{exec: &fakeTx{}}
}

func (m *MockTxManager) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	rollback := func() error { m.rollbacks++; return nil }
	commit := func() error { m.commits++; return nil }
	return m.exec, rollback, commit, nil
}

type MockFolderRepository struct{ mock.Mock }

func folderOrNil(args mock.Arguments) (*model.Folder, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, folderID string) (*model.Folder, error) {
	return folderOrNil(m.Called(ctx, exec, folderID))
}
func (m *MockFolderRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, folderID string) (*model.Folder, error) {
	return folderOrNil(m.Called(ctx, exec, folderID))
}
func (m *MockFolderRepository) GetOrgRoot(ctx context.Context, exec sqlx.ExtContext, orgID string) (*model.Folder, error) {
	return folderOrNil(m.Called(ctx, exec, orgID))
}
func (m *MockFolderRepository) InsertOrgRoot(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error {
	return m.Called(ctx, exec, folder).Error(0)
}
func (m *MockFolderRepository) GetUserRoot(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) (*model.Folder, error) {
	return folderOrNil(m.Called(ctx, exec, orgID, userID))
}
func (m *MockFolderRepository) InsertUserRoot(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error {
	return m.Called(ctx, exec, folder).Error(0)
}
func (m *MockFolderRepository) DeleteUserRootMapping(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) error {
	return m.Called(ctx, exec, orgID, userID).Error(0)
}
func (m *MockFolderRepository) Create(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error {
	return m.Called(ctx, exec, folder).Error(0)
}
func (m *MockFolderRepository) Update(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error {
	return m.Called(ctx, exec, folder).Error(0)
}
func (m *MockFolderRepository) UpdateParent(ctx context.Context, exec sqlx.ExtContext, folderID, parentFolderID string) error {
	return m.Called(ctx, exec, folderID, parentFolderID).Error(0)
}
func (m *MockFolderRepository) SetDefaultLens(ctx context.Context, exec sqlx.ExtContext, folderID string, lensID *string) error {
	return m.Called(ctx, exec, folderID, lensID).Error(0)
}
func (m *MockFolderRepository) Delete(ctx context.Context, exec sqlx.ExtContext, folderID string) error {
	return m.Called(ctx, exec, folderID).Error(0)
}
func (m *MockFolderRepository) CountChildren(ctx context.Context, exec sqlx.ExtContext, folderID string) (int, int, error) {
	args := m.Called(ctx, exec, folderID)
	return args.Int(0), args.Int(1), args.Error(2)
}
func (m *MockFolderRepository) FindAncestorIDs(ctx context.Context, exec sqlx.ExtContext, folderID string, maxDepth int) ([]string, error) {
	args := m.Called(ctx, exec, folderID, maxDepth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockFolderRepository) FindSubtree(ctx context.Context, exec sqlx.ExtContext, rootFolderID string, maxDepth int) ([]model.FolderNode, error) {
	args := m.Called(ctx, exec, rootFolderID, maxDepth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FolderNode), args.Error(1)
}
func (m *MockFolderRepository) ListChildren(ctx context.Context, exec sqlx.ExtContext, folderID string) ([]model.Folder, error) {
	args := m.Called(ctx, exec, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}
func (m *MockFolderRepository) ListByOwner(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) ([]model.Folder, error) {
	args := m.Called(ctx, exec, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

type MockDocumentRepository struct{ mock.Mock }

func documentOrNil(args mock.Arguments) (*model.Document, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func metaListOrNil(args mock.Arguments) ([]model.DocumentMeta, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentMeta), args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error {
	return m.Called(ctx, exec, document).Error(0)
}
func (m *MockDocumentRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.Document, error) {
	return documentOrNil(m.Called(ctx, exec, documentID))
}
func (m *MockDocumentRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.Document, error) {
	return documentOrNil(m.Called(ctx, exec, documentID))
}
func (m *MockDocumentRepository) GetMetaByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.DocumentMeta, error) {
	args := m.Called(ctx, exec, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentMeta), args.Error(1)
}
func (m *MockDocumentRepository) UpdateCanonicalContent(ctx context.Context, exec sqlx.ExtContext, documentID, content string) error {
	return m.Called(ctx, exec, documentID, content).Error(0)
}
func (m *MockDocumentRepository) UpdateSharedContent(ctx context.Context, exec sqlx.ExtContext, documentID string, content *string) error {
	return m.Called(ctx, exec, documentID, content).Error(0)
}
func (m *MockDocumentRepository) AcceptSharedContent(ctx context.Context, exec sqlx.ExtContext, documentID string) error {
	return m.Called(ctx, exec, documentID).Error(0)
}
func (m *MockDocumentRepository) Rename(ctx context.Context, exec sqlx.ExtContext, documentID, name string) error {
	return m.Called(ctx, exec, documentID, name).Error(0)
}
func (m *MockDocumentRepository) Move(ctx context.Context, exec sqlx.ExtContext, documentID, folderID string) error {
	return m.Called(ctx, exec, documentID, folderID).Error(0)
}
func (m *MockDocumentRepository) UpdateAttributes(ctx context.Context, exec sqlx.ExtContext, documentID string, attributes model.JSONMap) error {
	return m.Called(ctx, exec, documentID, attributes).Error(0)
}
func (m *MockDocumentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, documentID string) error {
	return m.Called(ctx, exec, documentID).Error(0)
}
func (m *MockDocumentRepository) ListMetaByFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) ([]model.DocumentMeta, error) {
	return metaListOrNil(m.Called(ctx, exec, folderID))
}
func (m *MockDocumentRepository) ListMetaByFolders(ctx context.Context, exec sqlx.ExtContext, folderIDs []string) ([]model.DocumentMeta, error) {
	return metaListOrNil(m.Called(ctx, exec, folderIDs))
}
func (m *MockDocumentRepository) ListMetaByOwner(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) ([]model.DocumentMeta, error) {
	return metaListOrNil(m.Called(ctx, exec, orgID, userID))
}
func (m *MockDocumentRepository) QueryMeta(ctx context.Context, exec sqlx.ExtContext, filter model.DocumentFilter) ([]model.DocumentMeta, error) {
	return metaListOrNil(m.Called(ctx, exec, filter))
}

type MockShareRepository struct{ mock.Mock }

func (m *MockShareRepository) Create(ctx context.Context, exec sqlx.ExtContext, share *model.Share) error {
	return m.Called(ctx, exec, share).Error(0)
}
func (m *MockShareRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, shareID string) (*model.Share, error) {
	args := m.Called(ctx, exec, shareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}
func (m *MockShareRepository) FindActiveForTarget(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID string, now time.Time) ([]model.Share, error) {
	args := m.Called(ctx, exec, targetType, targetID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Share), args.Error(1)
}
func (m *MockShareRepository) FindByLinkCode(ctx context.Context, exec sqlx.ExtContext, linkCode string) (*model.Share, error) {
	args := m.Called(ctx, exec, linkCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}
func (m *MockShareRepository) LinkCodeExists(ctx context.Context, exec sqlx.ExtContext, linkCode string) (bool, error) {
	args := m.Called(ctx, exec, linkCode)
	return args.Bool(0), args.Error(1)
}
func (m *MockShareRepository) Delete(ctx context.Context, exec sqlx.ExtContext, shareID string) error {
	return m.Called(ctx, exec, shareID).Error(0)
}
func (m *MockShareRepository) DeleteForTarget(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID string) ([]string, error) {
	args := m.Called(ctx, exec, targetType, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockRevisionRepository struct{ mock.Mock }

func (m *MockRevisionRepository) Append(ctx context.Context, exec sqlx.ExtContext, revision *model.Revision) error {
	return m.Called(ctx, exec, revision).Error(0)
}
func (m *MockRevisionRepository) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentID string) ([]model.Revision, error) {
	args := m.Called(ctx, exec, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Revision), args.Error(1)
}

type MockAuditRepository struct{ mock.Mock }

func (m *MockAuditRepository) Record(ctx context.Context, exec sqlx.ExtContext, entry *model.AuditLog) error {
	return m.Called(ctx, exec, entry).Error(0)
}

type MockLensRepository struct{ mock.Mock }

func lensOrNil(args mock.Arguments) (*model.Lens, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lens), args.Error(1)
}

func (m *MockLensRepository) Create(ctx context.Context, exec sqlx.ExtContext, lens *model.Lens) error {
	return m.Called(ctx, exec, lens).Error(0)
}
func (m *MockLensRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, lensID string) (*model.Lens, error) {
	return lensOrNil(m.Called(ctx, exec, lensID))
}
func (m *MockLensRepository) GetDefaultForFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) (*model.Lens, error) {
	return lensOrNil(m.Called(ctx, exec, folderID))
}
func (m *MockLensRepository) ListByFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) ([]model.Lens, error) {
	args := m.Called(ctx, exec, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lens), args.Error(1)
}
func (m *MockLensRepository) ListDesktop(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) ([]model.Lens, error) {
	args := m.Called(ctx, exec, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lens), args.Error(1)
}
func (m *MockLensRepository) Update(ctx context.Context, exec sqlx.ExtContext, lens *model.Lens) error {
	return m.Called(ctx, exec, lens).Error(0)
}
func (m *MockLensRepository) ReplaceMetadata(ctx context.Context, exec sqlx.ExtContext, lensID string, metadata model.LensMetadata) error {
	return m.Called(ctx, exec, lensID, metadata).Error(0)
}
func (m *MockLensRepository) ClearDefaultForFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) error {
	return m.Called(ctx, exec, folderID).Error(0)
}
func (m *MockLensRepository) SetDefault(ctx context.Context, exec sqlx.ExtContext, lensID string) error {
	return m.Called(ctx, exec, lensID).Error(0)
}
func (m *MockLensRepository) MergeMetadata(ctx context.Context, exec sqlx.ExtContext, lensID string, path []string, patch map[string]any) error {
	return m.Called(ctx, exec, lensID, path, patch).Error(0)
}
func (m *MockLensRepository) Delete(ctx context.Context, exec sqlx.ExtContext, lensID string) error {
	return m.Called(ctx, exec, lensID).Error(0)
}
func (m *MockLensRepository) DeleteDesktopByOwner(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) error {
	return m.Called(ctx, exec, orgID, userID).Error(0)
}

type MockLensItemRepository struct{ mock.Mock }

func (m *MockLensItemRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, items []model.LensItem) error {
	return m.Called(ctx, exec, items).Error(0)
}
func (m *MockLensItemRepository) ListByLens(ctx context.Context, exec sqlx.ExtContext, lensID string) ([]model.LensItem, error) {
	args := m.Called(ctx, exec, lensID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LensItem), args.Error(1)
}
func (m *MockLensItemRepository) CopyToLens(ctx context.Context, exec sqlx.ExtContext, fromLensID, toLensID string) error {
	return m.Called(ctx, exec, fromLensID, toLensID).Error(0)
}
func (m *MockLensItemRepository) DeleteByEntity(ctx context.Context, exec sqlx.ExtContext, entityType model.TargetType, entityID string) error {
	return m.Called(ctx, exec, entityType, entityID).Error(0)
}

type MockLinkCache struct{ mock.Mock }

func (m *MockLinkCache) SetShare(ctx context.Context, share *model.Share) error {
	return m.Called(ctx, share).Error(0)
}
func (m *MockLinkCache) GetShare(ctx context.Context, linkCode string) (*model.Share, error) {
	args := m.Called(ctx, linkCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}
func (m *MockLinkCache) DeleteShares(ctx context.Context, linkCodes ...string) error {
	return m.Called(ctx, linkCodes).Error(0)
}

type MockS3Storage struct{ mock.Mock }

func (m *MockS3Storage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}
func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}
func (m *MockS3Storage) DeletePrefix(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}

type MockPasswordHasher struct{ mock.Mock }

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}
func (m *MockPasswordHasher) Compare(hash, password string) bool {
	return m.Called(hash, password).Bool(0)
}

type MockAccessResolver struct{ mock.Mock }

func (m *MockAccessResolver) CheckAccessWith(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID, userID, orgID string) (model.Access, error) {
	args := m.Called(ctx, exec, targetType, targetID, userID, orgID)
	return args.Get(0).(model.Access), args.Error(1)
}
