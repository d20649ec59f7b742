package model

import "time"

type TargetType string

const (
	TargetFolder   TargetType = "folder"
	TargetDocument TargetType = "document"
)

func (t TargetType) Valid() bool {
	return t == TargetFolder || t == TargetDocument
}

type ShareType string

const (
	ShareTypeUser   ShareType = "user"
	ShareTypeOrg    ShareType = "org"
	ShareTypePublic ShareType = "public"
	ShareTypeLink   ShareType = "link"
)

// Share : выдача доступа. Расширяет видимость, владельца не меняет
type Share struct {
	ID               string     `db:"id" json:"id"`
	OrgID            string     `db:"org_id" json:"orgId"`
	TargetType       TargetType `db:"target_type" json:"targetType"`
	TargetID         string     `db:"target_id" json:"targetId"`
	ShareType        ShareType  `db:"share_type" json:"shareType"`
	GrantedToUserID  *string    `db:"granted_to_user_id" json:"grantedToUserId,omitempty"`
	LinkCode         *string    `db:"link_code" json:"linkCode,omitempty"`
	LinkPasswordHash *string    `db:"link_password_hash" json:"-"`
	ViewOnly         bool       `db:"view_only" json:"viewOnly"`
	CreatedByUserID  string     `db:"created_by_user_id" json:"createdByUserId"`
	ExpiresAt        *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
}

// Expired : истёк ли срок действия на момент now
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// ShareOptions : общие параметры выдачи
type ShareOptions struct {
	ViewOnly  bool
	ExpiresAt *time.Time
}

// LinkResolution : результат разрешения ссылки
type LinkResolution struct {
	TargetType TargetType `json:"targetType"`
	TargetID   string     `json:"targetId"`
	ViewOnly   bool       `json:"viewOnly"`
}
