package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"culture-points/config"
	"culture-points/internal/dto"
	"culture-points/internal/model"
	"culture-points/internal/repository"
)

// ── 员工模块业务错误 ──

var (
	ErrDuplicateEmployeeID = errors.New("工号已存在")
	ErrNoPermission        = errors.New("无权操作")
	ErrSelfStatusChange    = errors.New("不能修改自己的账号状态")
)

// StaffService 员工档案业务接口
type StaffService interface {
	CreateStaff(ctx context.Context, req *dto.CreateStaffRequest, callerID, callerRole string) (*dto.CreateStaffResponse, error)
	SetStatus(ctx context.Context, staffID string, req *dto.SetStatusRequest, callerID, callerRole string) (*dto.StaffResponse, error)
	List(ctx context.Context, req *dto.StaffListRequest) ([]dto.StaffResponse, int64, error)
	Get(ctx context.Context, staffID, callerID, callerRole string) (*dto.StaffDetailResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportStaffRow, error)
	ImportStaff(ctx context.Context, rows []ImportStaffRow, callerID, callerRole string) (*dto.ImportStaffResponse, error)
	// PageSize 员工列表固定每页条数
	PageSize() int
}

// ImportStaffRow Excel 导入解析后的单行数据
type ImportStaffRow struct {
	Row        int
	Name       string
	EmployeeID string
	Role       string
	JoinDate   string
}

type staffService struct {
	repo           *repository.Repository
	tx             txRunner
	ledger         LedgerService
	pageSize       int
	passwordSuffix string
	logger         *zap.Logger
}

// NewStaffService 创建 StaffService 实例
func NewStaffService(cfg *config.Config, repo *repository.Repository, ledger LedgerService, logger *zap.Logger) StaffService {
	pageSize := cfg.Ledger.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return &staffService{
		repo:           repo,
		tx:             repo,
		ledger:         ledger,
		pageSize:       pageSize,
		passwordSuffix: cfg.Ledger.InitialPasswordSuffix,
		logger:         logger,
	}
}

func (s *staffService) PageSize() int { return s.pageSize }

// InitialPassword 由工号派生的初始密码，员工首次登录后需修改
func InitialPassword(employeeID, suffix string) string {
	return strings.ToUpper(employeeID) + suffix
}

// ────────────────────── CreateStaff ──────────────────────

func (s *staffService) CreateStaff(ctx context.Context, req *dto.CreateStaffRequest, callerID, callerRole string) (*dto.CreateStaffResponse, error) {
	if callerRole != model.RoleSuperAdmin {
		return nil, ErrNoPermission
	}

	name := strings.TrimSpace(req.Name)
	employeeID := strings.ToUpper(strings.TrimSpace(req.EmployeeID))
	if name == "" || employeeID == "" {
		return nil, fmt.Errorf("%w: 姓名和工号不能为空", ErrValidation)
	}
	if !model.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: 无效的角色 %s", ErrValidation, req.Role)
	}
	joinDate, err := parseJoinDate(req.JoinDate)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Staff.ExistsByEmployeeID(ctx, employeeID)
	if err != nil {
		s.logger.Error("检查工号失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmployeeID
	}

	password := InitialPassword(employeeID, s.passwordSuffix)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	staff := &model.Staff{
		EmployeeID:         employeeID,
		Name:               name,
		PasswordHash:       string(hash),
		Role:               req.Role,
		Status:             model.StaffStatusActive,
		JoinDate:           joinDate,
		MustChangePassword: true,
	}
	staff.CreatedBy = &callerID

	if err := s.repo.Staff.Create(ctx, staff); err != nil {
		// 并发创建同一工号时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmployeeID
		}
		s.logger.Error("创建员工失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("新增员工",
		zap.String("staff_id", staff.StaffID),
		zap.String("employee_id", staff.EmployeeID),
		zap.String("operator", callerID),
	)

	return &dto.CreateStaffResponse{
		Staff:           toStaffResponse(staff),
		InitialPassword: password,
	}, nil
}

// ────────────────────── SetStatus ──────────────────────

func (s *staffService) SetStatus(ctx context.Context, staffID string, req *dto.SetStatusRequest, callerID, callerRole string) (*dto.StaffResponse, error) {
	if callerRole != model.RoleSuperAdmin {
		return nil, ErrNoPermission
	}
	if req.Status != model.StaffStatusActive && req.Status != model.StaffStatusInactive {
		return nil, fmt.Errorf("%w: 无效的状态 %s", ErrValidation, req.Status)
	}
	if staffID == callerID {
		return nil, ErrSelfStatusChange
	}

	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("查询员工失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}

	if staff.Status == req.Status {
		resp := toStaffResponse(staff)
		return &resp, nil
	}

	staff.Status = req.Status
	staff.UpdatedBy = &callerID
	if err := s.repo.Staff.UpdateStatus(ctx, staff); err != nil {
		s.logger.Warn("更新账号状态失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}

	resp := toStaffResponse(staff)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *staffService) List(ctx context.Context, req *dto.StaffListRequest) ([]dto.StaffResponse, int64, error) {
	filter := repository.StaffFilter{
		Status:    req.Status,
		Keyword:   req.Keyword,
		ScoreSort: req.ScoreSort,
	}
	if req.JoinFrom != "" {
		t, err := time.Parse(dateLayout, req.JoinFrom)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: 入职起始日期格式错误", ErrValidation)
		}
		filter.JoinFrom = &t
	}
	if req.JoinTo != "" {
		t, err := time.Parse(dateLayout, req.JoinTo)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: 入职截止日期格式错误", ErrValidation)
		}
		filter.JoinTo = &t
	}

	offset := (req.GetPage() - 1) * s.pageSize
	list, total, err := s.repo.Staff.List(ctx, filter, offset, s.pageSize)
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StaffResponse, 0, len(list))
	for i := range list {
		result = append(result, toStaffResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

// Get 员工详情（含台账），本人或审批角色可查看
func (s *staffService) Get(ctx context.Context, staffID, callerID, callerRole string) (*dto.StaffDetailResponse, error) {
	if staffID != callerID && !model.IsReviewerRole(callerRole) {
		return nil, ErrNoPermission
	}

	staff, err := s.repo.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("查询员工失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}

	ledger, err := s.ledger.GetLedger(ctx, staffID)
	if err != nil {
		return nil, err
	}

	return &dto.StaffDetailResponse{
		StaffResponse: toStaffResponse(staff),
		CreatedAt:     staff.CreatedAt.Format(dateTimeLayout),
		History:       ledger.History,
	}, nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/工号）")
)

// ParseImportFile 解析导入 Excel 文件，返回解析后的行数据
func (s *staffService) ParseImportFile(reader io.Reader) ([]ImportStaffRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["employee_id"] < 0 {
		return nil, ErrImportBadHeader
	}

	get := func(row []string, key string) string {
		idx := colIndex[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportStaffRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportStaffRow{
			Row:        i + 1,
			Name:       get(row, "name"),
			EmployeeID: get(row, "employee_id"),
			Role:       get(row, "role"),
			JoinDate:   get(row, "join_date"),
		}

		// 跳过全空行
		if item.Name == "" && item.EmployeeID == "" && item.Role == "" && item.JoinDate == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name":        -1,
		"employee_id": -1,
		"role":        -1,
		"join_date":   -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "姓名", "name":
			idx["name"] = i
		case "工号", "employee_id":
			idx["employee_id"] = i
		case "角色", "role":
			idx["role"] = i
		case "入职日期", "join_date":
			idx["join_date"] = i
		}
	}
	return idx
}

// parseImportRole 兼容中文角色名，空值视为普通员工
func parseImportRole(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "员工", model.RoleEmployee:
		return model.RoleEmployee, true
	case "管理员", model.RoleAdmin:
		return model.RoleAdmin, true
	case "超级管理员", model.RoleSuperAdmin:
		return model.RoleSuperAdmin, true
	}
	return "", false
}

// ────────────────────── ImportStaff ──────────────────────

func (s *staffService) ImportStaff(ctx context.Context, rows []ImportStaffRow, callerID, callerRole string) (*dto.ImportStaffResponse, error) {
	if callerRole != model.RoleSuperAdmin {
		return nil, ErrNoPermission
	}

	resp := &dto.ImportStaffResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportStaffError{Row: row, Reason: reason})
	}

	// 第一阶段：数据预校验（不接触数据库写操作）
	var valid []*model.Staff
	seen := make(map[string]int)

	for _, row := range rows {
		if row.Name == "" || row.EmployeeID == "" {
			fail(row.Row, "必填字段为空")
			continue
		}
		employeeID := strings.ToUpper(row.EmployeeID)

		role, ok := parseImportRole(row.Role)
		if !ok {
			fail(row.Row, fmt.Sprintf("无效的角色: %s", row.Role))
			continue
		}

		joinDate, err := parseJoinDate(strings.ReplaceAll(row.JoinDate, "/", "-"))
		if err != nil {
			fail(row.Row, fmt.Sprintf("入职日期格式错误: %s", row.JoinDate))
			continue
		}

		if first, dup := seen[employeeID]; dup {
			fail(row.Row, fmt.Sprintf("工号与第 %d 行重复: %s", first, employeeID))
			continue
		}
		exists, err := s.repo.Staff.ExistsByEmployeeID(ctx, employeeID)
		if err != nil {
			s.logger.Error("检查工号失败", zap.Error(err))
			return nil, err
		}
		if exists {
			fail(row.Row, fmt.Sprintf("工号已存在: %s", employeeID))
			continue
		}
		seen[employeeID] = row.Row

		hash, err := bcrypt.GenerateFromPassword([]byte(InitialPassword(employeeID, s.passwordSuffix)), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "密码哈希失败")
			continue
		}

		staff := &model.Staff{
			EmployeeID:         employeeID,
			Name:               row.Name,
			PasswordHash:       string(hash),
			Role:               role,
			Status:             model.StaffStatusActive,
			JoinDate:           joinDate,
			MustChangePassword: true,
		}
		staff.CreatedBy = &callerID
		valid = append(valid, staff)
	}

	// 第二阶段：在事务中批量创建所有通过校验的员工
	if len(valid) > 0 {
		err := s.tx.Transaction(ctx, func(tx *repository.Repository) error {
			for _, staff := range valid {
				if err := tx.Staff.Create(ctx, staff); err != nil {
					return fmt.Errorf("工号 %s 写入数据库失败，已回滚全部导入: %w", staff.EmployeeID, err)
				}
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w，已回滚全部导入", ErrDuplicateEmployeeID)
			}
			s.logger.Error("导入员工写入失败，事务回滚", zap.Error(err))
			return nil, err
		}
		resp.Success = len(valid)
	}

	s.logger.Info("批量导入员工",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ── 内部辅助方法 ──

// parseJoinDate 解析入职日期，空值取当天
func parseJoinDate(v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return model.Date(time.Now()), nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: 入职日期格式应为 YYYY-MM-DD", ErrValidation)
	}
	return model.Date(t), nil
}
