package repository

import (
	"airunote/config"
	"airunote/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

type AuditRepository struct {
	*config.Database
}

func NewAuditRepository(database *config.Database) *AuditRepository {
	return &AuditRepository{database}
}

func (r *AuditRepository) Record(ctx context.Context, exec sqlx.ExtContext, entry *model.AuditLog) error {
	_, err := exec.ExecContext(ctx, `
		INSERT INTO audit_logs (id, org_id, event, actor_user_id, target_type, target_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.OrgID, entry.Event, entry.ActorUserID, entry.TargetType, entry.TargetID, entry.Metadata)
	return err
}
