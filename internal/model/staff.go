package model

import (
	"time"

	"gorm.io/gorm"
)

// 角色
const (
	RoleEmployee   = "employee"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// 账号状态
const (
	StaffStatusActive   = "active"
	StaffStatusInactive = "inactive"
)

// Staff 员工档案，对应表 staff
type Staff struct {
	StaffID            string    `gorm:"type:varchar(36);primaryKey"                 json:"staff_id"`
	EmployeeID         string    `gorm:"type:varchar(32);not null;uniqueIndex"       json:"employee_id"`
	Name               string    `gorm:"type:varchar(100);not null"                  json:"name"`
	PasswordHash       string    `gorm:"type:varchar(255);not null"                  json:"-"`
	Role               string    `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	Score              int       `gorm:"not null;default:0"                          json:"score"`
	LoginCount         int       `gorm:"not null;default:0"                          json:"login_count"`
	Status             string    `gorm:"type:varchar(20);not null;default:'active'"  json:"status"`
	JoinDate           time.Time `gorm:"type:date;not null"                          json:"join_date"`
	MustChangePassword bool      `gorm:"not null;default:false"                      json:"must_change_password"`
	VersionedModel
}

// TableName 指定表名
func (Staff) TableName() string { return "staff" }

// BeforeCreate 生成主键并初始化版本号
func (s *Staff) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.StaffID)
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}

// IsActive 账号是否可登录
func (s *Staff) IsActive() bool { return s.Status == StaffStatusActive }

// IsReviewer 是否具有审批权限
func (s *Staff) IsReviewer() bool { return IsReviewerRole(s.Role) }

// IsReviewerRole admin 与 super_admin 可审批
func IsReviewerRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// ValidRole 校验角色取值
func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
