package requestresponse

import "airunote/internal/model"

// CreateLensRequest : query принимается в любой из двух поддерживаемых форм
type CreateLensRequest struct {
	Name      string              `json:"name" validate:"required,max=255" example:"Sprint board"`
	Type      string              `json:"type" validate:"required,oneof=box board canvas book desktop saved" example:"board"`
	IsDefault bool                `json:"isDefault"`
	Metadata  *model.LensMetadata `json:"metadata"`
	Query     map[string]any      `json:"query"`
}

type UpdateLensRequest struct {
	Name      *string             `json:"name" validate:"omitempty,max=255"`
	IsDefault *bool               `json:"isDefault"`
	Metadata  *model.LensMetadata `json:"metadata"`
	Query     map[string]any      `json:"query"`
}

type SwitchLensRequest struct {
	LensID string `json:"lensId" validate:"required"`
}

type DuplicateLensRequest struct {
	Name string `json:"name" validate:"omitempty,max=255"`
}

type CanvasPositionsRequest struct {
	Positions []model.CanvasPositionUpdate `json:"positions" validate:"required,min=1"`
}

type BoardLanesRequest struct {
	Lanes []model.BoardLane `json:"lanes" validate:"required"`
}

type LensItemsRequest struct {
	Items []model.LensItem `json:"items" validate:"required,min=1"`
}
