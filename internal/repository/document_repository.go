package repository

import (
	"airunote/config"
	"airunote/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// documentMetaColumns : проекция без содержимого. Списки обязаны читать только её
const documentMetaColumns = `id, folder_id, org_id, owner_user_id, type, name, visibility, state, attributes, created_at, updated_at`

const documentColumns = documentMetaColumns + `, canonical_content, shared_content, content`

// documentSortColumns : поля сортировки линз, отображённые на колонки. Всё остальное в ORDER BY не попадает
var documentSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"type":      "type",
	"state":     "state",
}

type DocumentRepository struct {
	*config.Database
}

func NewDocumentRepository(database *config.Database) *DocumentRepository {
	return &DocumentRepository{database}
}

// Create : сохраняем новый документ
func (r *DocumentRepository) Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error {
	query := `
		INSERT INTO documents (id, folder_id, org_id, owner_user_id, type, name, canonical_content, visibility, state, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := exec.ExecContext(
		ctx,
		query,
		document.ID,
		document.FolderID,
		document.OrgID,
		document.OwnerUserID,
		document.Type,
		document.Name,
		document.CanonicalContent,
		document.Visibility,
		document.State,
		document.Attributes)

	return err
}

// GetByID : документ целиком, nil если его нет
func (r *DocumentRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.Document, error) {
	var document model.Document
	err := sqlx.GetContext(ctx, exec, &document, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, documentID)
	return notFoundAsNil(&document, err)
}

// LockByID : документ с блокировкой строки, для accept/revert и конкурентных правок
func (r *DocumentRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.Document, error) {
	var document model.Document
	err := sqlx.GetContext(ctx, exec, &document, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, documentID)
	return notFoundAsNil(&document, err)
}

func (r *DocumentRepository) GetMetaByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.DocumentMeta, error) {
	var meta model.DocumentMeta
	err := sqlx.GetContext(ctx, exec, &meta, `SELECT `+documentMetaColumns+` FROM documents WHERE id = $1`, documentID)
	return notFoundAsNil(&meta, err)
}

func (r *DocumentRepository) UpdateCanonicalContent(ctx context.Context, exec sqlx.ExtContext, documentID, content string) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE documents
		SET canonical_content = $2, updated_at = NOW()
		WHERE id = $1
	`, documentID, content)
	return err
}

// UpdateSharedContent : nil очищает слот
func (r *DocumentRepository) UpdateSharedContent(ctx context.Context, exec sqlx.ExtContext, documentID string, content *string) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE documents
		SET shared_content = $2, updated_at = NOW()
		WHERE id = $1
	`, documentID, content)
	return err
}

// AcceptSharedContent : shared переносится в canonical одним выражением
func (r *DocumentRepository) AcceptSharedContent(ctx context.Context, exec sqlx.ExtContext, documentID string) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE documents
		SET canonical_content = shared_content, shared_content = NULL, updated_at = NOW()
		WHERE id = $1 AND shared_content IS NOT NULL
	`, documentID)
	return err
}

func (r *DocumentRepository) Rename(ctx context.Context, exec sqlx.ExtContext, documentID, name string) error {
	_, err := exec.ExecContext(ctx, `UPDATE documents SET name = $2, updated_at = NOW() WHERE id = $1`, documentID, name)
	return err
}

func (r *DocumentRepository) Move(ctx context.Context, exec sqlx.ExtContext, documentID, folderID string) error {
	_, err := exec.ExecContext(ctx, `UPDATE documents SET folder_id = $2, updated_at = NOW() WHERE id = $1`, documentID, folderID)
	return err
}

func (r *DocumentRepository) UpdateAttributes(ctx context.Context, exec sqlx.ExtContext, documentID string, attributes model.JSONMap) error {
	_, err := exec.ExecContext(ctx, `UPDATE documents SET attributes = $2, updated_at = NOW() WHERE id = $1`, documentID, attributes)
	return err
}

// Delete : жёсткое удаление, ревизии уходят каскадом
func (r *DocumentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, documentID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	return err
}

func (r *DocumentRepository) ListMetaByFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) ([]model.DocumentMeta, error) {
	docs := []model.DocumentMeta{}
	err := sqlx.SelectContext(ctx, exec, &docs, `
		SELECT `+documentMetaColumns+`
		FROM documents
		WHERE folder_id = $1
		ORDER BY created_at
	`, folderID)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepository) ListMetaByFolders(ctx context.Context, exec sqlx.ExtContext, folderIDs []string) ([]model.DocumentMeta, error) {
	docs := []model.DocumentMeta{}
	if len(folderIDs) == 0 {
		return docs, nil
	}

	err := sqlx.SelectContext(ctx, exec, &docs, `
		SELECT `+documentMetaColumns+`
		FROM documents
		WHERE folder_id = ANY($1)
		ORDER BY created_at
	`, pq.Array(folderIDs))
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepository) ListMetaByOwner(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) ([]model.DocumentMeta, error) {
	docs := []model.DocumentMeta{}
	err := sqlx.SelectContext(ctx, exec, &docs, `
		SELECT `+documentMetaColumns+`
		FROM documents
		WHERE org_id = $1 AND owner_user_id = $2
		ORDER BY created_at
	`, orgID, userID)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// QueryMeta : выборка документов для линзы. Организация и владелец входят в WHERE всегда,
// сортировка только по белому списку колонок
func (r *DocumentRepository) QueryMeta(ctx context.Context, exec sqlx.ExtContext, filter model.DocumentFilter) ([]model.DocumentMeta, error) {
	conditions := []string{"org_id = $1", "owner_user_id = $2"}
	args := []any{filter.OrgID, filter.OwnerUserID}

	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.FolderID != nil {
		conditions = append(conditions, "folder_id = "+next(*filter.FolderID))
	}
	if filter.State != nil {
		conditions = append(conditions, "state = "+next(string(*filter.State)))
	}
	if filter.Text != nil && *filter.Text != "" {
		conditions = append(conditions, "name ILIKE '%' || "+next(*filter.Text)+" || '%'")
	}
	if len(filter.Attributes) > 0 {
		data, err := json.Marshal(filter.Attributes)
		if err != nil {
			return nil, fmt.Errorf("фильтр атрибутов: %w", err)
		}
		conditions = append(conditions, "attributes @> "+next(string(data))+"::jsonb")
	}

	column, ok := documentSortColumns[filter.SortField]
	if !ok {
		column = "updated_at"
	}
	direction := "DESC"
	if filter.SortDirection == model.SortAsc {
		direction = "ASC"
	}

	query := `SELECT ` + documentMetaColumns + ` FROM documents WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY ` + column + ` ` + direction + `, id`
	if filter.Limit > 0 {
		query += ` LIMIT ` + next(filter.Limit)
	}

	docs := []model.DocumentMeta{}
	if err := sqlx.SelectContext(ctx, exec, &docs, query, args...); err != nil {
		return nil, err
	}
	return docs, nil
}
