package repository

import (
	"airunote/config"
	"airunote/internal/model"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const lensColumns = `id, org_id, owner_user_id, folder_id, name, type, is_default, metadata, query, created_at, updated_at`

type LensRepository struct {
	*config.Database
}

func NewLensRepository(database *config.Database) *LensRepository {
	return &LensRepository{database}
}

func (r *LensRepository) Create(ctx context.Context, exec sqlx.ExtContext, lens *model.Lens) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO lenses (id, org_id, owner_user_id, folder_id, name, type, is_default, metadata, query)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, lens.ID, lens.OrgID, lens.OwnerUserID, lens.FolderID, lens.Name, lens.Type, lens.IsDefault, lens.Metadata, lens.Query)

	return err
}

func (r *LensRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, lensID string) (*model.Lens, error) {
	var lens model.Lens
	err := sqlx.GetContext(ctx, exec, &lens, `SELECT `+lensColumns+` FROM lenses WHERE id = $1`, lensID)
	return notFoundAsNil(&lens, err)
}

func (r *LensRepository) GetDefaultForFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) (*model.Lens, error) {
	var lens model.Lens
	err := sqlx.GetContext(ctx, exec, &lens, `
		SELECT `+lensColumns+`
		FROM lenses
		WHERE folder_id = $1 AND is_default
	`, folderID)
	return notFoundAsNil(&lens, err)
}

func (r *LensRepository) ListByFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) ([]model.Lens, error) {
	lenses := []model.Lens{}
	err := sqlx.SelectContext(ctx, exec, &lenses, `
		SELECT `+lensColumns+`
		FROM lenses
		WHERE folder_id = $1
		ORDER BY created_at
	`, folderID)
	if err != nil {
		return nil, err
	}
	return lenses, nil
}

// ListDesktop : линзы без папки (desktop и saved) конкретного пользователя
func (r *LensRepository) ListDesktop(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) ([]model.Lens, error) {
	lenses := []model.Lens{}
	err := sqlx.SelectContext(ctx, exec, &lenses, `
		SELECT `+lensColumns+`
		FROM lenses
		WHERE org_id = $1 AND owner_user_id = $2 AND folder_id IS NULL
		ORDER BY created_at
	`, orgID, userID)
	if err != nil {
		return nil, err
	}
	return lenses, nil
}

// Update : имя и запрос. metadata здесь не пишется, раскладку меняют MergeMetadata и ReplaceMetadata.
// Флаг по умолчанию меняет только SetDefault
func (r *LensRepository) Update(ctx context.Context, exec sqlx.ExtContext, lens *model.Lens) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE lenses
		SET name = $2, query = $3, updated_at = NOW()
		WHERE id = $1
	`, lens.ID, lens.Name, lens.Query)
	return err
}

// ReplaceMetadata : явная замена всей metadata по запросу клиента
func (r *LensRepository) ReplaceMetadata(ctx context.Context, exec sqlx.ExtContext, lensID string, metadata model.LensMetadata) error {
	_, err := exec.ExecContext(ctx, `UPDATE lenses SET metadata = $2, updated_at = NOW() WHERE id = $1`, lensID, metadata)
	return err
}

func (r *LensRepository) ClearDefaultForFolder(ctx context.Context, exec sqlx.ExtContext, folderID string) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE lenses
		SET is_default = FALSE, updated_at = NOW()
		WHERE folder_id = $1 AND is_default
	`, folderID)
	return err
}

func (r *LensRepository) SetDefault(ctx context.Context, exec sqlx.ExtContext, lensID string) error {
	_, err := exec.ExecContext(ctx, `UPDATE lenses SET is_default = TRUE, updated_at = NOW() WHERE id = $1`, lensID)
	return err
}

// MergeMetadata : слияние patch с объектом metadata по пути path одним UPDATE.
// Выражение вычисляется от текущей версии строки, поэтому два параллельных патча разных ключей сохраняются оба
func (r *LensRepository) MergeMetadata(ctx context.Context, exec sqlx.ExtContext, lensID string, path []string, patch map[string]any) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("сериализация патча: %w", err)
	}

	query, args := mergeMetadataQuery(lensID, path, data)
	_, err = exec.ExecContext(ctx, query, args...)
	return err
}

// mergeMetadataQuery : для пути [a b] строит
// jsonb_set(obj({}), {a}, jsonb_set(obj({a}), {b}, obj({a,b}) || patch)),
// где obj(p) это объект по пути p или пустой объект, если там ничего нет
func mergeMetadataQuery(lensID string, path []string, patch []byte) (string, []any) {
	args := []any{lensID, string(patch)}
	param := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}
	objectAt := func(prefix []string) string {
		p := param(pq.Array(prefix))
		return fmt.Sprintf(
			"CASE WHEN jsonb_typeof(metadata #> %[1]s::text[]) = 'object' THEN metadata #> %[1]s::text[] ELSE '{}'::jsonb END", p)
	}

	expr := objectAt(path) + " || $2::jsonb"
	for k := len(path) - 1; k >= 0; k-- {
		expr = fmt.Sprintf("jsonb_set(%s, %s::text[], %s)", objectAt(path[:k]), param(pq.Array([]string{path[k]})), expr)
	}

	return `UPDATE lenses SET metadata = ` + expr + `, updated_at = NOW() WHERE id = $1`, args
}

// Delete : элементы линзы уходят каскадом, ссылка из папки обнуляется внешним ключом
func (r *LensRepository) Delete(ctx context.Context, exec sqlx.ExtContext, lensID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM lenses WHERE id = $1`, lensID)
	return err
}

func (r *LensRepository) DeleteDesktopByOwner(ctx context.Context, exec sqlx.ExtContext, orgID, userID string) error {
	_, err := exec.ExecContext(ctx, `
		DELETE FROM lenses
		WHERE org_id = $1 AND owner_user_id = $2 AND folder_id IS NULL
	`, orgID, userID)
	return err
}
