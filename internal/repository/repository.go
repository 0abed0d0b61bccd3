package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Staff        StaffRepository
	Application  ApplicationRepository
	PointHistory PointHistoryRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Staff:        NewStaffRepo(db),
		Application:  NewApplicationRepo(db),
		PointHistory: NewPointHistoryRepo(db),
	}
}

// WithTx 返回绑定到指定事务的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{
		db:           tx,
		Staff:        NewStaffRepo(tx),
		Application:  NewApplicationRepo(tx),
		PointHistory: NewPointHistoryRepo(tx),
	}
}

// Transaction 在单个数据库事务内执行 fn，fn 返回错误或 panic 时整体回滚
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
