package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

const (
	OrgRootHumanID  = "__org_root__"
	UserRootHumanID = "__user_root__"

	DefaultMaxTreeDepth = 20
)

// RootKind : явная метка корня вместо проверки parent == id
type RootKind string

const (
	RootKindNone RootKind = ""
	RootKindOrg  RootKind = "org"
	RootKindUser RootKind = "user"
)

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityOrg     Visibility = "org"
	VisibilityPublic  Visibility = "public"
)

type FolderType string

const (
	FolderTypeBox        FolderType = "box"
	FolderTypeBook       FolderType = "book"
	FolderTypeBoard      FolderType = "board"
	FolderTypeCanvas     FolderType = "canvas"
	FolderTypeJournal    FolderType = "journal"
	FolderTypeNotebook   FolderType = "notebook"
	FolderTypeWiki       FolderType = "wiki"
	FolderTypeLedger     FolderType = "ledger"
	FolderTypeGallery    FolderType = "gallery"
	FolderTypeArchive    FolderType = "archive"
	FolderTypeInbox      FolderType = "inbox"
	FolderTypeTemplate   FolderType = "template"
	FolderTypeCollection FolderType = "collection"
)

var folderTypes = map[FolderType]struct{}{
	FolderTypeBox: {}, FolderTypeBook: {}, FolderTypeBoard: {}, FolderTypeCanvas: {},
	FolderTypeJournal: {}, FolderTypeNotebook: {}, FolderTypeWiki: {}, FolderTypeLedger: {},
	FolderTypeGallery: {}, FolderTypeArchive: {}, FolderTypeInbox: {}, FolderTypeTemplate: {},
	FolderTypeCollection: {},
}

func (t FolderType) Valid() bool {
	_, ok := folderTypes[t]
	return ok
}

// Folder : папка иерархии. У каждой папки ровно один владелец, org_id неизменяем
type Folder struct {
	ID             string     `db:"id" json:"id"`
	OrgID          string     `db:"org_id" json:"orgId"`
	OwnerUserID    string     `db:"owner_user_id" json:"ownerUserId"`
	ParentFolderID string     `db:"parent_folder_id" json:"parentFolderId"`
	HumanID        string     `db:"human_id" json:"humanId"`
	Visibility     Visibility `db:"visibility" json:"visibility"`
	Type           FolderType `db:"type" json:"type"`
	RootKind       RootKind   `db:"root_kind" json:"rootKind,omitempty"`
	Metadata       JSONMap    `db:"metadata" json:"metadata"`
	DefaultLensID  *string    `db:"default_lens_id" json:"defaultLensId,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}

// IsRoot : корень организации или пользователя. Старые записи без root_kind распознаются по human_id
func (f *Folder) IsRoot() bool {
	if f.RootKind != RootKindNone {
		return true
	}
	return IsReservedHumanID(f.HumanID)
}

func IsReservedHumanID(humanID string) bool {
	return humanID == OrgRootHumanID || humanID == UserRootHumanID
}

// FolderNode : папка в дереве, без тяжёлых полей
type FolderNode struct {
	Folder
	Depth     int            `db:"depth" json:"depth"`
	Folders   []*FolderNode  `db:"-" json:"folders"`
	Documents []DocumentMeta `db:"-" json:"documents"`
}

// AttributeType : тип поля в схеме атрибутов папки
type AttributeType string

const (
	AttributeText    AttributeType = "text"
	AttributeNumber  AttributeType = "number"
	AttributeBoolean AttributeType = "boolean"
	AttributeDate    AttributeType = "date"
	AttributeSelect  AttributeType = "select"
)

type AttributeField struct {
	Key      string        `mapstructure:"key"`
	Type     AttributeType `mapstructure:"type"`
	Required bool          `mapstructure:"required"`
	Options  []string      `mapstructure:"options"`
}

// AttributeSchema : схема, которую папка объявляет в metadata.attributeSchema
type AttributeSchema struct {
	Fields []AttributeField `mapstructure:"fields"`
}

// AttributeSchema : схема атрибутов папки, nil если папка её не объявляет
func (f *Folder) AttributeSchema() (*AttributeSchema, error) {
	raw := f.Metadata.Map("attributeSchema")
	if raw == nil {
		return nil, nil
	}

	var schema AttributeSchema
	if err := mapstructure.Decode(map[string]any(raw), &schema); err != nil {
		return nil, ValidationError("некорректная схема атрибутов: %v", err)
	}
	if err := schema.checkFields(); err != nil {
		return nil, err
	}
	return &schema, nil
}

// checkFields : ключи уникальны, типы известны, у select есть варианты
func (s *AttributeSchema) checkFields() error {
	seen := make(map[string]struct{}, len(s.Fields))
	for _, field := range s.Fields {
		if field.Key == "" {
			return ValidationError("у поля схемы атрибутов нет ключа")
		}
		if _, ok := seen[field.Key]; ok {
			return ValidationError("ключ %q повторяется в схеме атрибутов", field.Key)
		}
		seen[field.Key] = struct{}{}

		switch field.Type {
		case AttributeText, AttributeNumber, AttributeBoolean, AttributeDate:
		case AttributeSelect:
			if len(field.Options) == 0 {
				return ValidationError("у поля %q типа select нет вариантов", field.Key)
			}
		default:
			return ValidationError("неизвестный тип %q у поля %q", field.Type, field.Key)
		}
	}
	return nil
}

// Validate : проверка атрибутов документа по схеме
func (s *AttributeSchema) Validate(attributes JSONMap) error {
	if s == nil {
		return nil
	}

	fields := make(map[string]AttributeField, len(s.Fields))
	for _, field := range s.Fields {
		fields[field.Key] = field
	}

	for key := range attributes {
		if _, ok := fields[key]; !ok {
			return schemaViolation("неизвестный атрибут %q", key)
		}
	}

	for _, field := range s.Fields {
		value, ok := attributes[field.Key]
		if !ok || value == nil {
			if field.Required {
				return schemaViolation("атрибут %q обязателен", field.Key)
			}
			continue
		}
		if err := field.check(value); err != nil {
			return err
		}
	}
	return nil
}

func (f AttributeField) check(value any) error {
	switch f.Type {
	case AttributeText:
		if _, ok := value.(string); !ok {
			return schemaViolation("атрибут %q должен быть строкой", f.Key)
		}
	case AttributeNumber:
		switch v := value.(type) {
		case float64, float32, int, int64:
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return schemaViolation("атрибут %q должен быть числом", f.Key)
			}
		default:
			return schemaViolation("атрибут %q должен быть числом", f.Key)
		}
	case AttributeBoolean:
		if _, ok := value.(bool); !ok {
			return schemaViolation("атрибут %q должен быть boolean", f.Key)
		}
	case AttributeDate:
		str, ok := value.(string)
		if !ok {
			return schemaViolation("атрибут %q должен быть датой", f.Key)
		}
		if _, err := time.Parse(time.DateOnly, str); err != nil {
			if _, err := time.Parse(time.RFC3339, str); err != nil {
				return schemaViolation("атрибут %q должен быть датой", f.Key)
			}
		}
	case AttributeSelect:
		str, ok := value.(string)
		if !ok {
			return schemaViolation("атрибут %q должен быть одним из вариантов", f.Key)
		}
		for _, option := range f.Options {
			if option == str {
				return nil
			}
		}
		return schemaViolation("значение %q не входит в варианты атрибута %q", str, f.Key)
	default:
		return schemaViolation("неизвестный тип %q у атрибута %q", f.Type, f.Key)
	}
	return nil
}

func schemaViolation(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindSchemaViolation, Message: fmt.Sprintf(format, args...)}
}

// CreateFolderInput : пустой ParentFolderID означает корень пользователя
type CreateFolderInput struct {
	ParentFolderID string
	HumanID        string
	Type           FolderType
	Metadata       JSONMap
}

// UpdateFolderInput : nil поля не меняются
type UpdateFolderInput struct {
	HumanID  *string
	Type     *FolderType
	Metadata JSONMap
}
