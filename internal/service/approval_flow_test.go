package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"culture-points/internal/dto"
	"culture-points/internal/model"
	"culture-points/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// 基于 SQLite 的审批全流程：验证事务边界而非 mock 行为
// ═══════════════════════════════════════════════════════════

func setupFlow(t *testing.T) (*Service, *repository.Repository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&model.Staff{}, &model.PointHistory{}, &model.Application{}); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}

	repo := repository.NewRepository(db)
	nop := zap.NewNop()
	ledger := NewLedgerService(repo, nop)
	svc := &Service{
		Application: NewApplicationService(repo, ledger, nop),
		Ledger:      ledger,
	}
	return svc, repo, db
}

func seedFlowStaff(t *testing.T, repo *repository.Repository, employeeID string, score int) *model.Staff {
	t.Helper()
	s := &model.Staff{
		EmployeeID:   employeeID,
		Name:         "员工" + employeeID,
		PasswordHash: "x",
		Role:         model.RoleEmployee,
		Status:       model.StaffStatusActive,
		Score:        score,
	}
	if err := repo.Staff.Create(context.Background(), s); err != nil {
		t.Fatalf("创建员工失败: %v", err)
	}
	return s
}

func TestFlow_ApproveIsAtomic(t *testing.T) {
	svc, repo, _ := setupFlow(t)
	ctx := context.Background()
	staff := seedFlowStaff(t, repo, "GY001", 0)

	app, err := svc.Application.Submit(ctx, validSubmission(), staff.StaffID)
	if err != nil {
		t.Fatalf("Submit 失败: %v", err)
	}
	if _, err := svc.Application.Approve(ctx, app.ID, nil, "admin", model.RoleAdmin); err != nil {
		t.Fatalf("Approve 失败: %v", err)
	}

	got, _ := repo.Staff.GetByID(ctx, staff.StaffID)
	if got.Score != 5 {
		t.Errorf("积分应为 5，实际=%d", got.Score)
	}
	report, err := svc.Ledger.Audit(ctx)
	if err != nil {
		t.Fatalf("Audit 失败: %v", err)
	}
	if report.Checked != 1 || len(report.Drifts) != 0 {
		t.Errorf("积分应与流水一致: %+v", report)
	}
}

func TestFlow_LedgerFailureRollsBackTransition(t *testing.T) {
	svc, repo, _ := setupFlow(t)
	ctx := context.Background()
	staff := seedFlowStaff(t, repo, "GY001", 0)

	app, _ := svc.Application.Submit(ctx, validSubmission(), staff.StaffID)

	// 预先占用该申请的流水唯一键，使入账在事务内失败
	if err := repo.PointHistory.Create(ctx, &model.PointHistory{
		StaffID:       "other",
		ApplicationID: app.ID,
		Amount:        1,
		Status:        model.ApplicationApproved,
	}); err != nil {
		t.Fatalf("预置流水失败: %v", err)
	}

	if _, err := svc.Application.Approve(ctx, app.ID, nil, "admin", model.RoleAdmin); err == nil {
		t.Fatal("入账失败时审批应返回错误")
	}

	stored, _ := repo.Application.GetByID(ctx, app.ID)
	if stored.Status != model.ApplicationPending {
		t.Errorf("状态流转应随事务回滚，实际=%s", stored.Status)
	}
	got, _ := repo.Staff.GetByID(ctx, staff.StaffID)
	if got.Score != 0 {
		t.Errorf("积分不应变化，实际=%d", got.Score)
	}
}

func TestFlow_ConcurrentApproveCreditsOnce(t *testing.T) {
	svc, repo, _ := setupFlow(t)
	ctx := context.Background()
	staff := seedFlowStaff(t, repo, "GY001", 0)
	app, _ := svc.Application.Submit(ctx, validSubmission(), staff.StaffID)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, conflicted int
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(reviewer string) {
			defer wg.Done()
			_, err := svc.Application.Approve(ctx, app.ID, nil, reviewer, model.RoleAdmin)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInvalidTransition):
				conflicted++
			}
		}(fmt.Sprintf("admin-%d", i))
	}
	wg.Wait()

	if succeeded != 1 || conflicted != 3 {
		t.Errorf("期望 1 次成功 3 次冲突，实际 %d/%d", succeeded, conflicted)
	}
	got, _ := repo.Staff.GetByID(ctx, staff.StaffID)
	history, _ := repo.PointHistory.ListByStaff(ctx, staff.StaffID)
	if got.Score != 5 || len(history) != 1 {
		t.Errorf("只能入账一次: score=%d entries=%d", got.Score, len(history))
	}
}

func TestFlow_ResubmitKeepsOriginalRejected(t *testing.T) {
	svc, repo, _ := setupFlow(t)
	ctx := context.Background()
	staff := seedFlowStaff(t, repo, "GY001", 0)

	orig, _ := svc.Application.Submit(ctx, validSubmission(), staff.StaffID)
	if _, err := svc.Application.Reject(ctx, orig.ID, nil, "admin", model.RoleAdmin); err != nil {
		t.Fatalf("Reject 失败: %v", err)
	}

	next, err := svc.Application.Resubmit(ctx, orig.ID, &dto.ResubmitRequest{RepeatReason: "补充材料"}, staff.StaffID)
	if err != nil {
		t.Fatalf("Resubmit 失败: %v", err)
	}
	if _, err := svc.Application.Approve(ctx, next.ID, nil, "admin", model.RoleAdmin); err != nil {
		t.Fatalf("Approve 失败: %v", err)
	}

	stored, _ := repo.Application.GetByID(ctx, orig.ID)
	if stored.Status != model.ApplicationRejected {
		t.Errorf("原申请应保持 rejected，实际=%s", stored.Status)
	}
	renewed, _ := repo.Application.GetByID(ctx, next.ID)
	if renewed.SourceApplicationID == nil || *renewed.SourceApplicationID != orig.ID || !renewed.IsRepeat {
		t.Errorf("新申请应关联原申请: %+v", renewed)
	}
	got, _ := repo.Staff.GetByID(ctx, staff.StaffID)
	if got.Score != 5 {
		t.Errorf("积分应为 5，实际=%d", got.Score)
	}
}

func TestFlow_LedgerNewestFirstWithinSameSecond(t *testing.T) {
	svc, repo, _ := setupFlow(t)
	ctx := context.Background()
	staff := seedFlowStaff(t, repo, "GY001", 0)

	// 连续审批在同一秒内完成，created_at 无法区分先后
	titles := []string{"A", "B", "C", "D", "E"}
	for _, title := range titles {
		req := validSubmission()
		req.Title = title
		app, err := svc.Application.Submit(ctx, req, staff.StaffID)
		if err != nil {
			t.Fatalf("Submit 失败: %v", err)
		}
		if _, err := svc.Application.Approve(ctx, app.ID, nil, "admin", model.RoleAdmin); err != nil {
			t.Fatalf("Approve 失败: %v", err)
		}
	}

	ledger, err := svc.Ledger.GetLedger(ctx, staff.StaffID)
	if err != nil {
		t.Fatalf("GetLedger 失败: %v", err)
	}
	if ledger.Score != 25 || len(ledger.History) != len(titles) {
		t.Fatalf("期望积分 25 / 5 条流水，实际=%d / %d", ledger.Score, len(ledger.History))
	}
	for i, entry := range ledger.History {
		want := "[审批通过] " + titles[len(titles)-1-i]
		if entry.Description != want {
			t.Errorf("第 %d 条流水期望 %q，实际 %q", i, want, entry.Description)
		}
	}
}
