package requestresponse

import "time"

// ShareRequest : одна точка входа для всех видов выдачи
type ShareRequest struct {
	TargetType      string     `json:"targetType" validate:"required,oneof=folder document" example:"document"`
	TargetID        string     `json:"targetId" validate:"required"`
	ShareType       string     `json:"shareType" validate:"required,oneof=user org public link" example:"link"`
	GrantedToUserID string     `json:"grantedToUserId" validate:"required_if=ShareType user"`
	Password        *string    `json:"password" validate:"omitempty,min=4,max=128"`
	ViewOnly        bool       `json:"viewOnly"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// ResolveLinkRequest : пароль нужен только для защищённых ссылок
type ResolveLinkRequest struct {
	Password *string `json:"password"`
}
