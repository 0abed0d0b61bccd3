package model

import (
	"time"

	"gorm.io/gorm"
)

// 申请状态：pending → approved | rejected，终态不可再变更
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Application 积分申请，对应表 applications
type Application struct {
	ApplicationID       string     `gorm:"type:varchar(36);primaryKey"               json:"application_id"`
	ApplicantID         string     `gorm:"type:varchar(36);not null;index"           json:"applicant_id"`
	ApplicantName       string     `gorm:"type:varchar(100);not null"                json:"applicant_name"`
	Title               string     `gorm:"type:varchar(200);not null"                json:"title"`
	Description         string     `gorm:"type:text;not null"                        json:"description"`
	Dimension           string     `gorm:"type:varchar(32);not null;index"           json:"dimension"`
	BehaviorLevel       string     `gorm:"type:varchar(4);not null"                  json:"behavior_level"`
	BehaviorItems       StringList `gorm:"type:text"                                 json:"behavior_items"`
	EvidenceDescription string     `gorm:"type:text"                                 json:"evidence_description,omitempty"`
	IsRepeat            bool       `gorm:"not null;default:false"                    json:"is_repeat"`
	RepeatReason        string     `gorm:"type:text"                                 json:"repeat_reason,omitempty"`
	SourceApplicationID *string    `gorm:"type:varchar(36)"                          json:"source_application_id,omitempty"`
	RequestedScore      int        `gorm:"not null"                                  json:"requested_score"`
	SubmitTime          time.Time  `gorm:"not null;index"                            json:"submit_time"`
	Status              string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminOpinion        string     `gorm:"type:text"                                 json:"admin_opinion,omitempty"`
	ReviewedBy          *string    `gorm:"type:varchar(36)"                          json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Application) TableName() string { return "applications" }

// BeforeCreate 生成主键
func (a *Application) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.ApplicationID)
	return nil
}

// IsPending 是否待审批
func (a *Application) IsPending() bool { return a.Status == ApplicationPending }
