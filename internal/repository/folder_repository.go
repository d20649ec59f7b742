package repository

import (
	"airunote/config"
	"airunote/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

const folderColumns = `id, org_id, owner_user_id, parent_folder_id, human_id, visibility, type, root_kind, metadata, default_lens_id, created_at`

const folderColumnsPrefixed = `f.id, f.org_id, f.owner_user_id, f.parent_folder_id, f.human_id, f.visibility, f.type, f.root_kind, f.metadata, f.default_lens_id, f.created_at`

type FolderRepository struct {
	*config.Database
}

func NewFolderRepository(database *config.Database) *FolderRepository {
	return &FolderRepository{database}
}

// GetByID : папка по id, nil если её нет
func (r *FolderRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, folderID string) (*model.Folder, error) {
	var folder model.Folder
	err := sqlx.GetContext(ctx, exec, &folder, `SELECT `+folderColumns+` FROM folders WHERE id = $1`, folderID)
	return notFoundAsNil(&folder, err)
}

// LockByID : то же, что GetByID, но с блокировкой строки до конца транзакции
func (r *FolderRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, folderID string) (*model.Folder, error) {
	var folder model.Folder
	err := sqlx.GetContext(ctx, exec, &folder, `SELECT `+folderColumns+` FROM folders WHERE id = $1 FOR UPDATE`, folderID)
	return notFoundAsNil(&folder, err)
}

func (r *FolderRepository) GetOrgRoot(ctx context.Context, exec sqlx.ExtContext, orgID string) (*model.Folder, error) {
	var folder model.Folder
	err := sqlx.GetContext(ctx, exec, &folder, `
		SELECT `+folderColumns+`
		FROM folders
		WHERE org_id = $1 AND root_kind = 'org'
	`, orgID)
	return notFoundAsNil(&folder, err)
}

// InsertOrgRoot : корень организации ссылается сам на себя. Гонка двух вставок ловится уникальным индексом
func (r *FolderRepository) InsertOrgRoot(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO folders (id, org_id, owner_user_id, parent_folder_id, human_id, visibility, type, root_kind, metadata)
		VALUES ($1, $2, $3, $1, $4, $5, $6, 'org', $7)
	`, folder.ID, folder.OrgID, folder.OwnerUserID, folder.HumanID, folder.Visibility, folder.Type, folder.Metadata)

	return wrapInsertError(err)
}

func (r *FolderRepository) GetUserRoot(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) (*model.Folder, error) {
	var folder model.Folder
	err := sqlx.GetContext(ctx, exec, &folder, `
		SELECT `+folderColumnsPrefixed+`
		FROM user_roots AS ur
		JOIN folders AS f ON f.id = ur.root_folder_id
		WHERE ur.org_id = $1 AND ur.user_id = $2
	`, orgID, userID)
	return notFoundAsNil(&folder, err)
}

// InsertUserRoot : папка и запись в user_roots. Вызывать внутри транзакции
func (r *FolderRepository) InsertUserRoot(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO folders (id, org_id, owner_user_id, parent_folder_id, human_id, visibility, type, root_kind, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'user', $8)
	`, folder.ID, folder.OrgID, folder.OwnerUserID, folder.ParentFolderID, folder.HumanID, folder.Visibility, folder.Type, folder.Metadata)
	if err != nil {
		return wrapInsertError(err)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO user_roots (org_id, user_id, root_folder_id)
		VALUES ($1, $2, $3)
	`, folder.OrgID, folder.OwnerUserID, folder.ID)

	return wrapInsertError(err)
}

func (r *FolderRepository) DeleteUserRootMapping(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM user_roots WHERE org_id = $1 AND user_id = $2`, orgID, userID)
	return err
}

func (r *FolderRepository) Create(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO folders (id, org_id, owner_user_id, parent_folder_id, human_id, visibility, type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, folder.ID, folder.OrgID, folder.OwnerUserID, folder.ParentFolderID, folder.HumanID, folder.Visibility, folder.Type, folder.Metadata)

	return err
}

// Update : имя, тип и метаданные. Родитель меняется только через UpdateParent
func (r *FolderRepository) Update(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE folders
		SET human_id = $2, type = $3, metadata = $4
		WHERE id = $1
	`, folder.ID, folder.HumanID, folder.Type, folder.Metadata)

	return err
}

func (r *FolderRepository) UpdateParent(ctx context.Context, exec sqlx.ExtContext, folderID, parentFolderID string) error {
	_, err := exec.ExecContext(ctx, `UPDATE folders SET parent_folder_id = $2 WHERE id = $1`, folderID, parentFolderID)
	return err
}

func (r *FolderRepository) SetDefaultLens(ctx context.Context, exec sqlx.ExtContext, folderID string, lensID *string) error {
	_, err := exec.ExecContext(ctx, `UPDATE folders SET default_lens_id = $2 WHERE id = $1`, folderID, lensID)
	return err
}

func (r *FolderRepository) Delete(ctx context.Context, exec sqlx.ExtContext, folderID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, folderID)
	return err
}

// CountChildren : число дочерних папок и документов. Самоссылка корня организации не считается
func (r *FolderRepository) CountChildren(ctx context.Context, exec sqlx.ExtContext, folderID string) (int, int, error) {
	var folders, documents int
	err := exec.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM folders WHERE parent_folder_id = $1 AND id <> $1),
			(SELECT COUNT(*) FROM documents WHERE folder_id = $1)
	`, folderID).Scan(&folders, &documents)
	if err != nil {
		return 0, 0, err
	}

	return folders, documents, nil
}

// FindAncestorIDs : цепочка от папки вверх, включая её саму. Подъём останавливается на корне организации
// или на глубине maxDepth
func (r *FolderRepository) FindAncestorIDs(ctx context.Context, exec sqlx.ExtContext, folderID string, maxDepth int) ([]string, error) {
	ids := []string{}
	err := sqlx.SelectContext(ctx, exec, &ids, `
		WITH RECURSIVE ancestors AS (
			SELECT id, parent_folder_id, root_kind, 0 AS depth
			FROM folders
			WHERE id = $1
			UNION ALL
			SELECT f.id, f.parent_folder_id, f.root_kind, a.depth + 1
			FROM folders AS f
			JOIN ancestors AS a ON f.id = a.parent_folder_id
			WHERE a.root_kind <> 'org' AND a.depth < $2
		)
		SELECT id FROM ancestors ORDER BY depth
	`, folderID, maxDepth)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// FindSubtree : папка и все потомки до maxDepth, плоским списком в порядке глубины
func (r *FolderRepository) FindSubtree(ctx context.Context, exec sqlx.ExtContext, rootFolderID string, maxDepth int) ([]model.FolderNode, error) {
	nodes := []model.FolderNode{}
	err := sqlx.SelectContext(ctx, exec, &nodes, `
		WITH RECURSIVE subtree AS (
			SELECT `+folderColumns+`, 0 AS depth
			FROM folders
			WHERE id = $1
			UNION ALL
			SELECT `+folderColumnsPrefixed+`, s.depth + 1
			FROM folders AS f
			JOIN subtree AS s ON f.parent_folder_id = s.id
			WHERE f.root_kind <> 'org' AND s.depth < $2
		)
		SELECT * FROM subtree ORDER BY depth, created_at
	`, rootFolderID, maxDepth)
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

func (r *FolderRepository) ListChildren(ctx context.Context, exec sqlx.ExtContext, folderID string) ([]model.Folder, error) {
	folders := []model.Folder{}
	err := sqlx.SelectContext(ctx, exec, &folders, `
		SELECT `+folderColumns+`
		FROM folders
		WHERE parent_folder_id = $1 AND root_kind <> 'org'
		ORDER BY created_at
	`, folderID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

// ListByOwner : все папки пользователя в организации, включая его корень. Корень организации не входит
func (r *FolderRepository) ListByOwner(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) ([]model.Folder, error) {
	folders := []model.Folder{}
	err := sqlx.SelectContext(ctx, exec, &folders, `
		SELECT `+folderColumns+`
		FROM folders
		WHERE org_id = $1 AND owner_user_id = $2 AND root_kind <> 'org'
		ORDER BY created_at
	`, orgID, userID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}
