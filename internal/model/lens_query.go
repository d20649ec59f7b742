package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/mitchellh/mapstructure"
)

const LensQueryVersion = 2

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// поля, по которым разрешена сортировка документов
var sortableFields = map[string]struct{}{
	"name": {}, "createdAt": {}, "updatedAt": {}, "type": {}, "state": {},
}

// поля, по которым разрешена группировка, кроме attributes.<key>
var groupableFields = map[string]struct{}{
	"state": {}, "type": {}, "folderId": {},
}

type LensFilters struct {
	Tags       []string       `mapstructure:"tags" json:"tags,omitempty"`
	State      *DocumentState `mapstructure:"state" json:"state,omitempty"`
	AuthorID   *string        `mapstructure:"authorId" json:"authorId,omitempty"`
	Text       *string        `mapstructure:"text" json:"text,omitempty"`
	Attributes map[string]any `mapstructure:"attributes" json:"attributes,omitempty"`
}

type LensSort struct {
	Field     string        `mapstructure:"field" json:"field"`
	Direction SortDirection `mapstructure:"direction" json:"direction"`
}

// LensQuery : стандартный запрос линзы (версия 2)
type LensQuery struct {
	Version int         `mapstructure:"version" json:"version"`
	Filters LensFilters `mapstructure:"filters" json:"filters"`
	Sort    LensSort    `mapstructure:"sort" json:"sort"`
	GroupBy *string     `mapstructure:"groupBy" json:"groupBy,omitempty"`
}

// legacyLensQuery : плоская форма запроса версии 1
type legacyLensQuery struct {
	Tags      []string `mapstructure:"tags"`
	State     string   `mapstructure:"state"`
	AuthorID  string   `mapstructure:"authorId"`
	Search    string   `mapstructure:"search"`
	SortBy    string   `mapstructure:"sortBy"`
	SortOrder string   `mapstructure:"sortOrder"`
	GroupBy   string   `mapstructure:"groupBy"`
}

func DefaultLensQuery() LensQuery {
	return LensQuery{
		Version: LensQueryVersion,
		Sort:    LensSort{Field: "updatedAt", Direction: SortDesc},
	}
}

// UpgradeLensQuery : единственная точка перевода сохранённого запроса в версию 2.
// Вызывается на границе хранилища и при приёме запроса от клиента
func UpgradeLensQuery(raw map[string]any) (LensQuery, error) {
	if len(raw) == 0 {
		return DefaultLensQuery(), nil
	}

	var query LensQuery
	if isStandardQuery(raw) {
		if err := decodeWeak(raw, &query); err != nil {
			return LensQuery{}, ValidationError("некорректный запрос линзы: %v", err)
		}
	} else {
		var legacy legacyLensQuery
		if err := decodeWeak(raw, &legacy); err != nil {
			return LensQuery{}, ValidationError("некорректный запрос линзы: %v", err)
		}
		query = legacy.upgrade()
	}

	query.Version = LensQueryVersion
	if err := query.Normalize(); err != nil {
		return LensQuery{}, err
	}
	return query, nil
}

func isStandardQuery(raw map[string]any) bool {
	if _, ok := raw["filters"]; ok {
		return true
	}
	if _, ok := raw["sort"]; ok {
		return true
	}
	if version, ok := raw["version"].(float64); ok && int(version) >= LensQueryVersion {
		return true
	}
	if version, ok := raw["version"].(int); ok && version >= LensQueryVersion {
		return true
	}
	return false
}

func (l legacyLensQuery) upgrade() LensQuery {
	query := LensQuery{
		Filters: LensFilters{Tags: l.Tags},
		Sort:    LensSort{Field: l.SortBy, Direction: SortDirection(l.SortOrder)},
	}
	if l.State != "" {
		state := DocumentState(l.State)
		query.Filters.State = &state
	}
	if l.AuthorID != "" {
		authorID := l.AuthorID
		query.Filters.AuthorID = &authorID
	}
	if l.Search != "" {
		text := l.Search
		query.Filters.Text = &text
	}
	if l.GroupBy != "" {
		groupBy := l.GroupBy
		query.GroupBy = &groupBy
	}
	return query
}

// Normalize : значения по умолчанию и проверка допустимых полей
func (q *LensQuery) Normalize() error {
	if q.Sort.Field == "" {
		q.Sort.Field = "updatedAt"
	}
	if q.Sort.Direction == "" {
		q.Sort.Direction = SortDesc
	}
	if _, ok := sortableFields[q.Sort.Field]; !ok {
		return ValidationError("сортировка по полю %q не поддерживается", q.Sort.Field)
	}
	if q.Sort.Direction != SortAsc && q.Sort.Direction != SortDesc {
		return ValidationError("направление сортировки %q не поддерживается", q.Sort.Direction)
	}
	if q.Filters.State != nil && !q.Filters.State.Valid() {
		return ValidationError("неизвестное состояние документа %q", *q.Filters.State)
	}
	if q.GroupBy != nil {
		if _, ok := AttributeGroupKey(*q.GroupBy); !ok {
			if _, ok := groupableFields[*q.GroupBy]; !ok {
				return ValidationError("группировка по полю %q не поддерживается", *q.GroupBy)
			}
		}
	}
	return nil
}

// AttributeGroupKey : ключ атрибута из groupBy вида "attributes.<key>"
func AttributeGroupKey(groupBy string) (string, bool) {
	const prefix = "attributes."
	if len(groupBy) > len(prefix) && groupBy[:len(prefix)] == prefix {
		return groupBy[len(prefix):], true
	}
	return "", false
}

func (q LensQuery) Value() (driver.Value, error) {
	return json.Marshal(q)
}

func (q *LensQuery) Scan(value any) error {
	var raw JSONMap
	if err := raw.Scan(value); err != nil {
		return err
	}
	upgraded, err := UpgradeLensQuery(raw)
	if err != nil {
		return err
	}
	*q = upgraded
	return nil
}

func decodeWeak(input map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
