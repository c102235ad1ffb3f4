package models

import (
	"database/sql/driver"
	"errors"
)

// JSON 不透明的 JSON 值，原样存取；零长度表示请求中未出现该字段
type JSON []byte

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("models.JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[:0], data...)
	return nil
}

// Value 实现 driver.Valuer
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan 实现 sql.Scanner
func (j *JSON) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSON(nil), v...)
	case string:
		*j = JSON(v)
	default:
		return errors.New("models.JSON: unsupported scan type")
	}
	return nil
}

func (JSON) GormDataType() string { return "text" }

// Present 请求中是否出现了该字段（包括显式的 null）
func (j JSON) Present() bool { return len(j) > 0 }

// Clone 深拷贝
func (j JSON) Clone() JSON {
	if j == nil {
		return nil
	}
	return append(JSON(nil), j...)
}
