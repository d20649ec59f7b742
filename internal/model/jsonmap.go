package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap : произвольная структура, которая хранится в колонке jsonb
type JSONMap map[string]any

// Value : реализация driver.Valuer
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan : реализация sql.Scanner
func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = JSONMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("неподдерживаемый тип для JSONMap: %T", value)
	}

	result := JSONMap{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Map : вложенный объект по ключу или nil
func (j JSONMap) Map(key string) JSONMap {
	switch v := j[key].(type) {
	case map[string]any:
		return v
	case JSONMap:
		return v
	default:
		return nil
	}
}

// Clone : глубокая копия через json
func (j JSONMap) Clone() JSONMap {
	if j == nil {
		return JSONMap{}
	}
	data, err := json.Marshal(j)
	if err != nil {
		return JSONMap{}
	}
	clone := JSONMap{}
	_ = json.Unmarshal(data, &clone)
	return clone
}
