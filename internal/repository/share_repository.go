package repository

import (
	"airunote/config"
	"airunote/internal/model"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

const shareColumns = `id, org_id, target_type, target_id, share_type, granted_to_user_id, link_code, link_password_hash,
	view_only, created_by_user_id, expires_at, created_at`

type ShareRepository struct {
	database *config.Database
}

func NewShareRepository(database *config.Database) *ShareRepository {
	return &ShareRepository{database: database}
}

func (r *ShareRepository) Create(ctx context.Context, exec sqlx.ExtContext, share *model.Share) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO shares (id, org_id, target_type, target_id, share_type, granted_to_user_id, link_code,
		                    link_password_hash, view_only, created_by_user_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		share.ID,
		share.OrgID,
		share.TargetType,
		share.TargetID,
		share.ShareType,
		share.GrantedToUserID,
		share.LinkCode,
		share.LinkPasswordHash,
		share.ViewOnly,
		share.CreatedByUserID,
		share.ExpiresAt)

	return wrapInsertError(err)
}

func (r *ShareRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, shareID string) (*model.Share, error) {
	var share model.Share
	err := sqlx.GetContext(ctx, exec, &share, `SELECT `+shareColumns+` FROM shares WHERE id = $1`, shareID)
	return notFoundAsNil(&share, err)
}

// FindActiveForTarget : неистёкшие выдачи на объект, в порядке создания
func (r *ShareRepository) FindActiveForTarget(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID string, now time.Time) ([]model.Share, error) {
	shares := []model.Share{}
	err := sqlx.SelectContext(ctx, exec, &shares, `
		SELECT `+shareColumns+`
		FROM shares
		WHERE target_type = $1 AND target_id = $2 AND (expires_at IS NULL OR expires_at > $3)
		ORDER BY created_at
	`, targetType, targetID, now)
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// FindByLinkCode : выдача по коду, включая истёкшие. Истечение проверяет сервис, чтобы отличить 410 от 404
func (r *ShareRepository) FindByLinkCode(ctx context.Context, exec sqlx.ExtContext, linkCode string) (*model.Share, error) {
	var share model.Share
	err := sqlx.GetContext(ctx, exec, &share, `
		SELECT `+shareColumns+`
		FROM shares
		WHERE link_code = $1 AND share_type = 'link'
	`, linkCode)
	return notFoundAsNil(&share, err)
}

func (r *ShareRepository) LinkCodeExists(ctx context.Context, exec sqlx.ExtContext, linkCode string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, exec, &exists, `
		SELECT EXISTS (SELECT 1 FROM shares WHERE link_code = $1)
	`, linkCode)
	return exists, err
}

func (r *ShareRepository) Delete(ctx context.Context, exec sqlx.ExtContext, shareID string) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM shares WHERE id = $1`, shareID)
	return err
}

// DeleteForTarget : удаляет все выдачи объекта и возвращает коды ссылок для сброса кэша
func (r *ShareRepository) DeleteForTarget(ctx context.Context, exec sqlx.ExtContext, targetType model.TargetType, targetID string) ([]string, error) {
	codes := []string{}
	err := sqlx.SelectContext(ctx, exec, &codes, `
		DELETE FROM shares
		WHERE target_type = $1 AND target_id = $2
		RETURNING COALESCE(link_code, '')
	`, targetType, targetID)
	if err != nil {
		return nil, err
	}

	linkCodes := codes[:0]
	for _, code := range codes {
		if code != "" {
			linkCodes = append(linkCodes, code)
		}
	}
	return linkCodes, nil
}
