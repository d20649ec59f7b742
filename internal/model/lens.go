package model

import "time"

type LensType string

const (
	LensTypeBox     LensType = "box"
	LensTypeBoard   LensType = "board"
	LensTypeCanvas  LensType = "canvas"
	LensTypeBook    LensType = "book"
	LensTypeDesktop LensType = "desktop"
	LensTypeSaved   LensType = "saved"
)

func (t LensType) Valid() bool {
	switch t {
	case LensTypeBox, LensTypeBoard, LensTypeCanvas, LensTypeBook, LensTypeDesktop, LensTypeSaved:
		return true
	}
	return false
}

// FolderScoped : box/board/canvas/book принадлежат папке, desktop/saved нет
func (t LensType) FolderScoped() bool {
	switch t {
	case LensTypeBox, LensTypeBoard, LensTypeCanvas, LensTypeBook:
		return true
	}
	return false
}

// Lens : именованная проекция папки или запроса в конкретный вид
type Lens struct {
	ID          string       `db:"id" json:"id,omitempty"`
	OrgID       string       `db:"org_id" json:"orgId"`
	OwnerUserID string       `db:"owner_user_id" json:"ownerUserId"`
	FolderID    *string      `db:"folder_id" json:"folderId"`
	Name        string       `db:"name" json:"name"`
	Type        LensType     `db:"type" json:"type"`
	IsDefault   bool         `db:"is_default" json:"isDefault"`
	Metadata    LensMetadata `db:"metadata" json:"metadata"`
	Query       LensQuery    `db:"query" json:"query"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// ImplicitBoxLens : временная box линза для папки без настроенного вида, без id
func ImplicitBoxLens(folder *Folder) Lens {
	folderID := folder.ID
	return Lens{
		OrgID:       folder.OrgID,
		OwnerUserID: folder.OwnerUserID,
		FolderID:    &folderID,
		Name:        "Box",
		Type:        LensTypeBox,
		IsDefault:   true,
		Metadata:    LensMetadata{},
		Query:       DefaultLensQuery(),
	}
}

// LensItem : размещение сущности внутри линзы, одна запись на (lens, entity)
type LensItem struct {
	ID         string     `db:"id" json:"id"`
	LensID     string     `db:"lens_id" json:"lensId"`
	EntityID   string     `db:"entity_id" json:"entityId" validate:"required"`
	EntityType TargetType `db:"entity_type" json:"entityType" validate:"required,oneof=document folder"`
	ColumnID   *string    `db:"column_id" json:"columnId,omitempty"`
	Order      *float64   `db:"item_order" json:"order,omitempty"`
	X          *float64   `db:"x" json:"x,omitempty"`
	Y          *float64   `db:"y" json:"y,omitempty"`
	Metadata   JSONMap    `db:"metadata" json:"metadata"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

// ProjectionGroup : группа документов при groupBy
type ProjectionGroup struct {
	Key         string   `json:"key"`
	DocumentIDs []string `json:"documentIds"`
}

// Projection : папка или запрос, отрисованные через линзу
type Projection struct {
	Lens      Lens              `json:"lens"`
	Implicit  bool              `json:"implicit"`
	Folder    *Folder           `json:"folder,omitempty"`
	Folders   []Folder          `json:"folders"`
	Documents []DocumentMeta    `json:"documents"`
	Items     []LensItem        `json:"items"`
	Groups    []ProjectionGroup `json:"groups,omitempty"`
}

// LensInput : поля для создания и изменения линзы
type LensInput struct {
	Name      string
	Type      LensType
	IsDefault bool
	Metadata  *LensMetadata
	Query     *LensQuery
}

// LensUpdate : nil поля не меняются
type LensUpdate struct {
	Name      *string
	IsDefault *bool
	Metadata  *LensMetadata
	Query     *LensQuery
}
