package requestresponse

type CreateDocumentRequest struct {
	FolderID   string         `json:"folderId" validate:"required" example:"5b0c3f0e-1d7a-4c43-9e5f-0f3a1c2b7d10"`
	Name       string         `json:"name" validate:"required,max=255" example:"Roadmap"`
	Type       string         `json:"type" validate:"required,oneof=TXT MD RTF" example:"MD"`
	Content    string         `json:"content"`
	Attributes map[string]any `json:"attributes"`
}

type RenameDocumentRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type MoveDocumentRequest struct {
	FolderID string `json:"folderId" validate:"required"`
}

type UpdateAttributesRequest struct {
	Attributes map[string]any `json:"attributes" validate:"required"`
}

// UpdateContentRequest : пустая строка допустима, отсутствующее поле нет
type UpdateContentRequest struct {
	Content *string `json:"content" validate:"required"`
}

// UpdateContentResponse : в какой слот попала запись
type UpdateContentResponse struct {
	ContentType string `json:"contentType" example:"canonical"`
}

type AttachmentUploadRequest struct {
	Filename string `json:"filename" validate:"required,max=255" example:"diagram.png"`
}

// DeleteVaultRequest : точный токен подтверждения из конфигурации
type DeleteVaultRequest struct {
	ConfirmationToken string `json:"confirmationToken" validate:"required"`
}
