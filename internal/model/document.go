package model

import "time"

type DocumentType string

const (
	DocumentTypeTXT DocumentType = "TXT"
	DocumentTypeMD  DocumentType = "MD"
	DocumentTypeRTF DocumentType = "RTF"
)

func (t DocumentType) Valid() bool {
	return t == DocumentTypeTXT || t == DocumentTypeMD || t == DocumentTypeRTF
}

type DocumentState string

const (
	DocumentStateActive   DocumentState = "active"
	DocumentStateArchived DocumentState = "archived"
	DocumentStateTrashed  DocumentState = "trashed"
)

func (s DocumentState) Valid() bool {
	return s == DocumentStateActive || s == DocumentStateArchived || s == DocumentStateTrashed
}

// DocumentMeta : документ без содержимого. Списки и деревья читают только эту проекцию
type DocumentMeta struct {
	ID          string        `db:"id" json:"id"`
	FolderID    string        `db:"folder_id" json:"folderId"`
	OrgID       string        `db:"org_id" json:"orgId"`
	OwnerUserID string        `db:"owner_user_id" json:"ownerUserId"`
	Type        DocumentType  `db:"type" json:"type"`
	Name        string        `db:"name" json:"name"`
	Visibility  Visibility    `db:"visibility" json:"visibility"`
	State       DocumentState `db:"state" json:"state"`
	Attributes  JSONMap       `db:"attributes" json:"attributes"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// Document : документ целиком, с каноническим и общим содержимым
type Document struct {
	DocumentMeta
	CanonicalContent *string `db:"canonical_content" json:"-"`
	SharedContent    *string `db:"shared_content" json:"sharedContent"`
	LegacyContent    *string `db:"content" json:"-"`
}

// Content : то, что видит вызывающий. Всегда canonical, старые записи без него отдают legacy поле
func (d *Document) Content() string {
	if d.CanonicalContent != nil {
		return *d.CanonicalContent
	}
	if d.LegacyContent != nil {
		return *d.LegacyContent
	}
	return ""
}

// HasSharedContent : есть ли правка соавтора, ожидающая решения владельца
func (d *Document) HasSharedContent() bool {
	return d.SharedContent != nil
}

// DocumentView : ответ на чтение документа
type DocumentView struct {
	DocumentMeta
	Content       string  `json:"content"`
	SharedContent *string `json:"sharedContent,omitempty"`
	Access        Access  `json:"access"`
}

// FullMetadata : плоский список для индексации и поиска, без содержимого
type FullMetadata struct {
	Folders   []Folder       `json:"folders"`
	Documents []DocumentMeta `json:"documents"`
}

// DocumentFilter : фильтр для выборки документов линзой. Владелец и организация обязательны всегда
type DocumentFilter struct {
	OrgID         string
	OwnerUserID   string
	FolderID      *string
	State         *DocumentState
	Text          *string
	Attributes    map[string]any
	SortField     string
	SortDirection SortDirection
	Limit         int
}

// CreateDocumentInput : документ всегда создаётся приватным и активным
type CreateDocumentInput struct {
	FolderID   string
	Name       string
	Type       DocumentType
	Content    string
	Attributes JSONMap
}

// AttachmentURL : pre-signed ссылка и ключ объекта в хранилище
type AttachmentURL struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VaultDeletion : итог удаления хранилища пользователя
type VaultDeletion struct {
	Documents int `json:"documents"`
	Folders   int `json:"folders"`
}
