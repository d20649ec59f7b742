package repository

import (
	"airunote/config"
	"airunote/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

type RevisionRepository struct {
	*config.Database
}

func NewRevisionRepository(database *config.Database) *RevisionRepository {
	return &RevisionRepository{database}
}

// Append : снимок содержимого. UPDATE и DELETE для ревизий в репозитории нет
func (r *RevisionRepository) Append(ctx context.Context, exec sqlx.ExtContext, revision *model.Revision) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO document_revisions (id, document_id, content_type, content, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5)
	`, revision.ID, revision.DocumentID, revision.ContentType, revision.Content, revision.CreatedByUserID)
	return err
}

// ListByDocument : история документа, новые сверху
func (r *RevisionRepository) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentID string) ([]model.Revision, error) {
	revisions := []model.Revision{}
	err := sqlx.SelectContext(ctx, exec, &revisions, `
		SELECT id, document_id, content_type, content, created_by_user_id, created_at
		FROM document_revisions
		WHERE document_id = $1
		ORDER BY created_at DESC, id
	`, documentID)
	if err != nil {
		return nil, err
	}
	return revisions, nil
}
