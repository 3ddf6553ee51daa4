package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a string slice stored as a JSON text column. Substring
// queries against the raw column work on both SQLite and Postgres.
type StringList []string

// Value implements the driver.Valuer interface
func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	// HTML escaping would hide "&" and "<" from LIKE queries.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(a)); err != nil {
		return nil, err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Scan implements the sql.Scanner interface
func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}

	if len(bytes) == 0 {
		*a = StringList{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// GormDataType keeps the column portable across dialects.
func (StringList) GormDataType() string {
	return "text"
}
