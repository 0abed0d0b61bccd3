package repository

import (
	"context"

	"gorm.io/gorm"

	"culture-points/internal/model"
)

// StaffScoreSum 流水汇总与档案积分的对照
type StaffScoreSum struct {
	StaffID    string
	EmployeeID string
	Name       string
	Score      int
	HistorySum int
}

// PointHistoryRepository 积分流水数据访问接口（仅追加）
type PointHistoryRepository interface {
	Create(ctx context.Context, entry *model.PointHistory) error
	ListByStaff(ctx context.Context, staffID string) ([]model.PointHistory, error)
	// SumByStaff 汇总每位员工 approved 流水之和，并带出档案积分
	SumByStaff(ctx context.Context) ([]StaffScoreSum, error)
}

type pointHistoryRepo struct {
	db *gorm.DB
}

// NewPointHistoryRepo 创建 PointHistoryRepository 实例
func NewPointHistoryRepo(db *gorm.DB) PointHistoryRepository {
	return &pointHistoryRepo{db: db}
}

func (r *pointHistoryRepo) Create(ctx context.Context, entry *model.PointHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByStaff 按写入顺序倒序（最新在前）
func (r *pointHistoryRepo) ListByStaff(ctx context.Context, staffID string) ([]model.PointHistory, error) {
	var list []model.PointHistory
	err := r.db.WithContext(ctx).
		Where("staff_id = ?", staffID).
		Order("seq DESC").
		Find(&list).Error
	return list, err
}

func (r *pointHistoryRepo) SumByStaff(ctx context.Context) ([]StaffScoreSum, error) {
	var rows []StaffScoreSum
	err := r.db.WithContext(ctx).
		Table("staff AS s").
		Select("s.staff_id, s.employee_id, s.name, s.score, COALESCE(SUM(h.amount), 0) AS history_sum").
		Joins("LEFT JOIN point_history AS h ON h.staff_id = s.staff_id AND h.status = ?", model.ApplicationApproved).
		Group("s.staff_id, s.employee_id, s.name, s.score").
		Order("s.employee_id ASC").
		Scan(&rows).Error
	return rows, err
}
