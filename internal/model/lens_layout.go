package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
)

// Ключи поддеревьев metadata.views.<kind>
const (
	ViewCanvas = "canvas"
	ViewBoard  = "board"
	ViewBook   = "book"
	ViewBox    = "box"
)

type CanvasPosition struct {
	X float64 `mapstructure:"x" json:"x"`
	Y float64 `mapstructure:"y" json:"y"`
}

type CanvasViewport struct {
	X    float64 `mapstructure:"x" json:"x"`
	Y    float64 `mapstructure:"y" json:"y"`
	Zoom float64 `mapstructure:"zoom" json:"zoom"`
}

type CanvasLayout struct {
	Positions map[string]CanvasPosition `mapstructure:"positions" json:"positions,omitempty"`
	Viewport  *CanvasViewport           `mapstructure:"viewport" json:"viewport,omitempty"`
	Extra     map[string]any            `mapstructure:",remain" json:"-"`
}

type BoardLane struct {
	ID    string  `mapstructure:"id" json:"id" validate:"required"`
	Title string  `mapstructure:"title" json:"title"`
	Order float64 `mapstructure:"order" json:"order"`
}

type BoardCard struct {
	LaneID string  `mapstructure:"laneId" json:"laneId"`
	Order  float64 `mapstructure:"order" json:"order"`
}

type BoardLayout struct {
	Lanes []BoardLane          `mapstructure:"lanes" json:"lanes,omitempty"`
	Cards map[string]BoardCard `mapstructure:"cards" json:"cards,omitempty"`
	Extra map[string]any       `mapstructure:",remain" json:"-"`
}

type BookLayout struct {
	Order             []string `mapstructure:"order" json:"order,omitempty"`
	CurrentDocumentID string         `mapstructure:"currentDocumentId" json:"currentDocumentId,omitempty"`
	Extra             map[string]any `mapstructure:",remain" json:"-"`
}

type BoxLayout struct {
	Sort    string `mapstructure:"sort" json:"sort,omitempty"`
	Density string         `mapstructure:"density" json:"density,omitempty"`
	Extra   map[string]any `mapstructure:",remain" json:"-"`
}

// ViewLayouts : по одной структуре на вид. Неизвестные виды сохраняются в Extra
type ViewLayouts struct {
	Canvas *CanvasLayout  `mapstructure:"canvas"`
	Board  *BoardLayout   `mapstructure:"board"`
	Book   *BookLayout    `mapstructure:"book"`
	Box    *BoxLayout     `mapstructure:"box"`
	Extra  map[string]any `mapstructure:",remain"`
}

// LensMetadata : состояние раскладки линзы. Декодируется и кодируется на границе хранилища
type LensMetadata struct {
	Views ViewLayouts    `mapstructure:"views"`
	Extra map[string]any `mapstructure:",remain"`
}

// DecodeLensMetadata : из произвольной карты в типизированные раскладки
func DecodeLensMetadata(raw map[string]any) (LensMetadata, error) {
	var metadata LensMetadata
	if len(raw) == 0 {
		return metadata, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &metadata,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return metadata, err
	}
	if err := decoder.Decode(raw); err != nil {
		return metadata, fmt.Errorf("некорректная metadata линзы: %w", err)
	}
	return metadata, nil
}

// ToMap : обратное преобразование, неизвестные поля возвращаются на место
func (m LensMetadata) ToMap() map[string]any {
	out := make(map[string]any, len(m.Extra)+1)
	for key, value := range m.Extra {
		out[key] = value
	}

	views := make(map[string]any, len(m.Views.Extra)+4)
	for key, value := range m.Views.Extra {
		views[key] = value
	}
	if m.Views.Canvas != nil {
		views[ViewCanvas] = layoutMap(m.Views.Canvas, m.Views.Canvas.Extra)
	}
	if m.Views.Board != nil {
		views[ViewBoard] = layoutMap(m.Views.Board, m.Views.Board.Extra)
	}
	if m.Views.Book != nil {
		views[ViewBook] = layoutMap(m.Views.Book, m.Views.Book.Extra)
	}
	if m.Views.Box != nil {
		views[ViewBox] = layoutMap(m.Views.Box, m.Views.Box.Extra)
	}
	out["views"] = views
	return out
}

// layoutMap : известные поля раскладки плюс неизвестные ключи того же поддерева. Известные поля приоритетнее
func layoutMap(layout any, extra map[string]any) map[string]any {
	out := map[string]any{}
	if encoded, err := json.Marshal(layout); err == nil {
		_ = json.Unmarshal(encoded, &out)
	}
	for key, value := range extra {
		if _, known := out[key]; !known {
			out[key] = value
		}
	}
	return out
}

func (m LensMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

func (m *LensMetadata) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := DecodeLensMetadata(raw)
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

func (m LensMetadata) Value() (driver.Value, error) {
	return json.Marshal(m.ToMap())
}

func (m *LensMetadata) Scan(value any) error {
	var raw JSONMap
	if err := raw.Scan(value); err != nil {
		return err
	}
	decoded, err := DecodeLensMetadata(raw)
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// ViewKindFor : какое поддерево views принадлежит типу линзы
func ViewKindFor(lensType LensType) string {
	switch lensType {
	case LensTypeCanvas:
		return ViewCanvas
	case LensTypeBoard:
		return ViewBoard
	case LensTypeBook:
		return ViewBook
	case LensTypeBox:
		return ViewBox
	default:
		return ""
	}
}

// CanvasPositionUpdate : новая позиция одной сущности на холсте
type CanvasPositionUpdate struct {
	EntityID string   `json:"entityId" validate:"required"`
	X        *float64 `json:"x" validate:"required"`
	Y        *float64 `json:"y" validate:"required"`
}

// BoardCardUpdate : перенос карточки в колонку
type BoardCardUpdate struct {
	CardID string   `json:"cardId" validate:"required"`
	LaneID string   `json:"laneId" validate:"required"`
	Order  *float64 `json:"order" validate:"required"`
}

// BatchLayoutUpdate : несколько изменений раскладки в одной транзакции
type BatchLayoutUpdate struct {
	CanvasPositions []CanvasPositionUpdate `json:"canvasPositions" validate:"dive"`
	BoardCards      []BoardCardUpdate      `json:"boardCards" validate:"dive"`
	BoardLanes      []BoardLane            `json:"boardLanes,omitempty" validate:"omitempty,dive"`
}

// Finite : координаты должны быть конечными числами
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
