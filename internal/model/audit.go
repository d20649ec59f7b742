package model

import "time"

type AuditEvent string

const (
	AuditVaultDeleted    AuditEvent = "vault_deleted"
	AuditDocumentDeleted AuditEvent = "document_deleted"
	AuditFolderDeleted   AuditEvent = "folder_deleted"
	AuditShareRevoked    AuditEvent = "share_revoked"
	AuditLinkRevoked     AuditEvent = "link_revoked"
)

// AuditLog : запись о разрушающем действии
type AuditLog struct {
	ID          string     `db:"id"`
	OrgID       string     `db:"org_id"`
	Event       AuditEvent `db:"event"`
	ActorUserID string     `db:"actor_user_id"`
	TargetType  string     `db:"target_type"`
	TargetID    string     `db:"target_id"`
	Metadata    JSONMap    `db:"metadata"`
	CreatedAt   time.Time  `db:"created_at"`
}
