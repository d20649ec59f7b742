package requestresponse

// CreateFolderRequest : пустой parentFolderId означает корень пользователя
type CreateFolderRequest struct {
	ParentFolderID string         `json:"parentFolderId" example:"5b0c3f0e-1d7a-4c43-9e5f-0f3a1c2b7d10"`
	HumanID        string         `json:"humanId" validate:"required,max=255" example:"Projects"`
	Type           string         `json:"type" validate:"omitempty,max=32" example:"board"`
	Metadata       map[string]any `json:"metadata"`
}

// UpdateFolderRequest : отсутствующие поля не меняются
type UpdateFolderRequest struct {
	HumanID  *string        `json:"humanId" validate:"omitempty,max=255"`
	Type     *string        `json:"type" validate:"omitempty,max=32"`
	Metadata map[string]any `json:"metadata"`
}

type MoveFolderRequest struct {
	ParentFolderID string `json:"parentFolderId" validate:"required"`
}
