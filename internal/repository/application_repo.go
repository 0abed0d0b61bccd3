package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"culture-points/internal/model"
)

// ApplicationFilter 申请列表过滤条件
type ApplicationFilter struct {
	ApplicantID string
	Status      string
	Dimension   string
}

// DimensionCount 按维度聚合的申请数
type DimensionCount struct {
	Dimension string
	Count     int64
}

// StatusCount 按状态聚合的申请数
type StatusCount struct {
	Status string
	Count  int64
}

// ApplicationRepository 积分申请数据访问接口
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
	ListPending(ctx context.Context) ([]model.Application, error)
	List(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]model.Application, int64, error)
	// Transition 仅当当前状态为 pending 时写入终态，返回是否命中
	Transition(ctx context.Context, id, toStatus, opinion, reviewerID string, at time.Time) (bool, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountByDimension(ctx context.Context) ([]DimensionCount, error)
}

type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo 创建 ApplicationRepository 实例
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListPending 待审批列表，按提交时间升序
func (r *applicationRepo) ListPending(ctx context.Context) ([]model.Application, error) {
	var list []model.Application
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ApplicationPending).
		Order("submit_time ASC").Order("application_id ASC").
		Find(&list).Error
	return list, err
}

// List 分页列表，按提交时间降序
func (r *applicationRepo) List(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]model.Application, int64, error) {
	var list []model.Application
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Application{})
	if filter.ApplicantID != "" {
		db = db.Where("applicant_id = ?", filter.ApplicantID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Dimension != "" {
		db = db.Where("dimension = ?", filter.Dimension)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("submit_time DESC").Order("application_id DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *applicationRepo) Transition(ctx context.Context, id, toStatus, opinion, reviewerID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_id = ? AND status = ?", id, model.ApplicationPending).
		Updates(map[string]interface{}{
			"status":        toStatus,
			"admin_opinion": opinion,
			"reviewed_by":   reviewerID,
			"reviewed_at":   at,
			"updated_by":    reviewerID,
			"updated_at":    at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *applicationRepo) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *applicationRepo) CountByDimension(ctx context.Context) ([]DimensionCount, error) {
	var rows []DimensionCount
	err := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Select("dimension, COUNT(*) AS count").
		Group("dimension").
		Order("count DESC").Order("dimension ASC").
		Scan(&rows).Error
	return rows, err
}
