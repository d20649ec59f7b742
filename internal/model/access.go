package model

// Access : результат разрешения доступа для пары (пользователь, объект)
type Access struct {
	HasAccess bool      `json:"hasAccess"`
	CanRead   bool      `json:"canRead"`
	CanWrite  bool      `json:"canWrite"`
	CanDelete bool      `json:"canDelete"`
	IsOwner   bool      `json:"isOwner"`
	ShareType ShareType `json:"shareType,omitempty"`
	ViewOnly  *bool     `json:"viewOnly,omitempty"`
}

// OwnerAccess : полный доступ владельца
func OwnerAccess() Access {
	return Access{HasAccess: true, CanRead: true, CanWrite: true, CanDelete: true, IsOwner: true}
}

// SharedAccess : доступ по выдаче. Удаление всегда только у владельца
func SharedAccess(share *Share) Access {
	viewOnly := share.ViewOnly
	return Access{
		HasAccess: true,
		CanRead:   true,
		CanWrite:  !share.ViewOnly,
		CanDelete: false,
		ShareType: share.ShareType,
		ViewOnly:  &viewOnly,
	}
}

// NoAccess : совпадений нет
func NoAccess() Access {
	return Access{}
}

// Ownership : минимальный набор полей для проверки доступа
type Ownership struct {
	ID          string     `db:"id"`
	OrgID       string     `db:"org_id"`
	OwnerUserID string     `db:"owner_user_id"`
	RootKind    RootKind   `db:"root_kind"`
	TargetType  TargetType `db:"-"`
}
