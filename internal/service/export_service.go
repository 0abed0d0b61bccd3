package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"culture-points/internal/model"
	"culture-points/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportStaff 导出员工名册及当前积分
	ExportStaff(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, now: time.Now, logger: logger}
}

var exportHeaders = []string{"工号", "姓名", "角色", "状态", "入职日期", "积分", "登录次数"}

var roleNames = map[string]string{
	model.RoleEmployee:   "员工",
	model.RoleAdmin:      "管理员",
	model.RoleSuperAdmin: "超级管理员",
}

var statusNames = map[string]string{
	model.StaffStatusActive:   "正常",
	model.StaffStatusInactive: "冻结",
}

// ═══════════════════════════════════════════════════════════
// ExportStaff 导出员工名册
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（合并单元格）
//   - 第 2 行：表头，与导入模板的前四列一致
//   - 第 3 行起：按入职登记顺序排列的员工

func (s *exportService) ExportStaff(ctx context.Context) (*bytes.Buffer, string, error) {
	staffList, err := s.repo.Staff.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询员工名册失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "员工名册"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 14)
	f.SetColWidth(sheetName, "F", "G", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	today := s.now().Format(dateLayout)

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("员工积分名册（%s）", today))
	f.MergeCell(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(exportHeaders)-1), 2), headerStyle)

	// 数据行
	row := 3
	for _, st := range staffList {
		f.SetCellValue(sheetName, cell("A", row), st.EmployeeID)
		f.SetCellValue(sheetName, cell("B", row), st.Name)
		f.SetCellValue(sheetName, cell("C", row), roleNames[st.Role])
		f.SetCellValue(sheetName, cell("D", row), statusNames[st.Status])
		f.SetCellValue(sheetName, cell("E", row), st.JoinDate.Format(dateLayout))
		f.SetCellValue(sheetName, cell("F", row), st.Score)
		f.SetCellValue(sheetName, cell("G", row), st.LoginCount)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("员工积分名册_%s.xlsx", today)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
