package model

import (
	"time"

	"gorm.io/gorm"
)

// PointHistory 积分流水，对应表 point_history
// 仅在审批通过时由台账写入，创建后不可修改
type PointHistory struct {
	// Seq 写入顺序，同一时刻的多条流水按此排序
	Seq           int64     `gorm:"primaryKey;autoIncrement"              json:"-"`
	HistoryID     string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"history_id"`
	StaffID       string    `gorm:"type:varchar(36);not null;index"       json:"staff_id"`
	ApplicationID string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"application_id"`
	Date          time.Time `gorm:"type:date;not null"                    json:"date"`
	Description   string    `gorm:"type:varchar(255);not null"            json:"description"`
	Dimension     string    `gorm:"type:varchar(32);not null"             json:"dimension"`
	Amount        int       `gorm:"not null"                              json:"amount"`
	Status        string    `gorm:"type:varchar(20);not null"             json:"status"`
	Opinion       string    `gorm:"type:text"                             json:"opinion,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"    json:"created_at"`
}

// TableName 指定表名
func (PointHistory) TableName() string { return "point_history" }

// BeforeCreate 生成主键
func (h *PointHistory) BeforeCreate(_ *gorm.DB) error {
	ensureID(&h.HistoryID)
	return nil
}
