package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"culture-points/internal/model"
	pkgerrors "culture-points/pkg/errors"
)

// StaffFilter 员工列表过滤条件
type StaffFilter struct {
	Status    string
	Keyword   string // 姓名或工号模糊匹配
	JoinFrom  *time.Time
	JoinTo    *time.Time
	ScoreSort string // asc / desc，空值按入职登记顺序
}

// StaffRepository 员工数据访问接口
type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	GetByID(ctx context.Context, id string) (*model.Staff, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*model.Staff, error)
	ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error)
	List(ctx context.Context, filter StaffFilter, offset, limit int) ([]model.Staff, int64, error)
	ListAll(ctx context.Context) ([]model.Staff, error)
	TopBy(ctx context.Context, column string, limit int) ([]model.Staff, error)
	UpdateStatus(ctx context.Context, staff *model.Staff) error
	UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error
	IncrementLoginCount(ctx context.Context, id string) error
	AddScore(ctx context.Context, id string, amount int) error
}

// staffRepo StaffRepository 的 GORM 实现
type staffRepo struct {
	db *gorm.DB
}

// NewStaffRepo 创建 StaffRepository 实例
func NewStaffRepo(db *gorm.DB) StaffRepository {
	return &staffRepo{db: db}
}

func (r *staffRepo) Create(ctx context.Context, staff *model.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *staffRepo) GetByID(ctx context.Context, id string) (*model.Staff, error) {
	var staff model.Staff
	err := r.db.WithContext(ctx).
		Where("staff_id = ?", id).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetByEmployeeID 工号查找，忽略大小写
func (r *staffRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*model.Staff, error) {
	var staff model.Staff
	err := r.db.WithContext(ctx).
		Where("UPPER(employee_id) = ?", strings.ToUpper(employeeID)).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Where("UPPER(employee_id) = ?", strings.ToUpper(employeeID)).
		Count(&count).Error
	return count > 0, err
}

func (r *staffRepo) List(ctx context.Context, filter StaffFilter, offset, limit int) ([]model.Staff, int64, error) {
	var list []model.Staff
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Staff{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(kw)) + "%"
		db = db.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(employee_id) LIKE ? ESCAPE '\'`, like, like)
	}
	if filter.JoinFrom != nil {
		db = db.Where("join_date >= ?", *filter.JoinFrom)
	}
	if filter.JoinTo != nil {
		db = db.Where("join_date <= ?", *filter.JoinTo)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.ScoreSort {
	case "asc":
		db = db.Order("score ASC")
	case "desc":
		db = db.Order("score DESC")
	}

	if err := db.Order("created_at ASC").Order("employee_id ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *staffRepo) ListAll(ctx context.Context) ([]model.Staff, error) {
	var list []model.Staff
	err := r.db.WithContext(ctx).
		Order("created_at ASC").Order("employee_id ASC").
		Find(&list).Error
	return list, err
}

// TopBy 按 score / login_count 降序取前 N 名
func (r *staffRepo) TopBy(ctx context.Context, column string, limit int) ([]model.Staff, error) {
	if column != "score" && column != "login_count" {
		column = "score"
	}
	var list []model.Staff
	err := r.db.WithContext(ctx).
		Order(column + " DESC").Order("employee_id ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// UpdateStatus 乐观锁更新账号状态
func (r *staffRepo) UpdateStatus(ctx context.Context, staff *model.Staff) error {
	oldVersion := staff.Version
	result := r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Where("staff_id = ? AND version = ?", staff.StaffID, oldVersion).
		Updates(map[string]interface{}{
			"status":     staff.Status,
			"updated_by": staff.UpdatedBy,
			"updated_at": time.Now(),
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	staff.Version = oldVersion + 1
	return nil
}

func (r *staffRepo) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Where("staff_id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":        passwordHash,
			"must_change_password": mustChange,
			"updated_at":           time.Now(),
		}).Error
}

// IncrementLoginCount 原子自增登录次数
func (r *staffRepo) IncrementLoginCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Where("staff_id = ?", id).
		UpdateColumn("login_count", gorm.Expr("login_count + ?", 1)).Error
}

// AddScore 原子累加积分，员工不存在时返回 gorm.ErrRecordNotFound
func (r *staffRepo) AddScore(ctx context.Context, id string, amount int) error {
	result := r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Where("staff_id = ?", id).
		UpdateColumn("score", gorm.Expr("score + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// likeEscaper 转义 LIKE 通配符，关键字按字面匹配
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
