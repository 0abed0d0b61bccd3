package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ── 文本列表自定义类型 ──

// StringList 以逗号分隔文本存储的字符串列表，实现 GORM Scanner/Valuer 接口。
// 元素本身不允许包含逗号（行为范例编码满足该约束）。
type StringList []string

// Scan 将 "a,b,c" 文本解析为 []string。
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
	if s == "" {
		*l = StringList{}
		return nil
	}
	parts := strings.Split(s, ",")
	out := make(StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*l = out
	return nil
}

// Value 将 []string 序列化为 "a,b,c" 文本。
func (l StringList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(36)"                   json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(36)"                   json:"updated_by,omitempty"`
}

// VersionedModel 支持乐观锁的审计模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// newID 生成主键
func newID() string {
	return uuid.New().String()
}

// ensureID 仅在主键为空时填充
func ensureID(id *string) {
	if *id == "" {
		*id = newID()
	}
}

// Date 仅日期部分（YYYY-MM-DD），统一按 UTC 零点存储
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
