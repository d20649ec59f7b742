package repository

import (
	"airunote/config"
	"airunote/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

const lensItemColumns = `id, lens_id, entity_id, entity_type, column_id, item_order, x, y, metadata, created_at, updated_at`

type LensItemRepository struct {
	*config.Database
}

func NewLensItemRepository(database *config.Database) *LensItemRepository {
	return &LensItemRepository{database}
}

// Upsert : одна запись на (lens_id, entity_id). Пакет пишется в транзакции вызывающего.
// id и отметки времени в items заменяются значениями из сохранённой строки: при конфликте id остаётся прежним
func (r *LensItemRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, items []model.LensItem) error {
	query := `
		INSERT INTO lens_items (id, lens_id, entity_id, entity_type, column_id, item_order, x, y, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (lens_id, entity_id) DO UPDATE
		SET entity_type = EXCLUDED.entity_type,
		    column_id   = EXCLUDED.column_id,
		    item_order  = EXCLUDED.item_order,
		    x           = EXCLUDED.x,
		    y           = EXCLUDED.y,
		    metadata    = EXCLUDED.metadata,
		    updated_at  = NOW()
		RETURNING id, created_at, updated_at
	`
	for i := range items {
		item := &items[i]
		err := exec.QueryRowxContext(ctx, query,
			item.ID, item.LensID, item.EntityID, item.EntityType, item.ColumnID, item.Order, item.X, item.Y, item.Metadata).
			Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *LensItemRepository) ListByLens(ctx context.Context, exec sqlx.ExtContext, lensID string) ([]model.LensItem, error) {
	items := []model.LensItem{}
	err := sqlx.SelectContext(ctx, exec, &items, `
		SELECT `+lensItemColumns+`
		FROM lens_items
		WHERE lens_id = $1
		ORDER BY item_order NULLS LAST, created_at
	`, lensID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CopyToLens : копия размещений при дублировании линзы
func (r *LensItemRepository) CopyToLens(ctx context.Context, exec sqlx.ExtContext, fromLensID, toLensID string) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO lens_items (id, lens_id, entity_id, entity_type, column_id, item_order, x, y, metadata)
		SELECT gen_random_uuid(), $2, entity_id, entity_type, column_id, item_order, x, y, metadata
		FROM lens_items
		WHERE lens_id = $1
	`, fromLensID, toLensID)
	return err
}

// DeleteByEntity : убирает сущность из всех линз после её удаления
func (r *LensItemRepository) DeleteByEntity(ctx context.Context, exec sqlx.ExtContext, entityType model.TargetType, entityID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM lens_items WHERE entity_type = $1 AND entity_id = $2`, entityType, entityID)
	return err
}
