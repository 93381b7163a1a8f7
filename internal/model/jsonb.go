package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ListaTexto is a JSONB array of strings (URLs, ids).
type ListaTexto []string

func (l ListaTexto) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *ListaTexto) Scan(value interface{}) error {
	return scanJSON(value, l, "ListaTexto")
}

// scanJSON decodes a jsonb column delivered either as []byte or string.
func scanJSON(value interface{}, dest interface{}, name string) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan %s: %v", name, value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
