package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"culture-points/internal/dto"
)

// Auditor 积分对账执行方，service.LedgerService 满足该接口
type Auditor interface {
	Audit(ctx context.Context) (*dto.LedgerAuditResponse, error)
}

// LedgerAuditJob 定时核对员工积分与流水汇总，发现偏差只告警不修复
type LedgerAuditJob struct {
	cron    *cron.Cron
	auditor Auditor
	spec    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewLedgerAuditJob 创建对账任务，spec 为空时 Start 不做任何事
func NewLedgerAuditJob(spec string, auditor Auditor, logger *zap.Logger) *LedgerAuditJob {
	return &LedgerAuditJob{
		cron:    cron.New(),
		auditor: auditor,
		spec:    spec,
		timeout: time.Minute,
		logger:  logger,
	}
}

// Start 注册并启动定时任务
func (j *LedgerAuditJob) Start() error {
	if j.spec == "" {
		j.logger.Info("未配置对账周期，跳过定时对账")
		return nil
	}
	if _, err := j.cron.AddFunc(j.spec, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("定时对账已启动", zap.String("spec", j.spec))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (j *LedgerAuditJob) Stop() {
	<-j.cron.Stop().Done()
}

// Run 执行一次对账
func (j *LedgerAuditJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	report, err := j.auditor.Audit(ctx)
	if err != nil {
		j.logger.Error("积分对账失败", zap.Error(err))
		return
	}

	for _, d := range report.Drifts {
		j.logger.Warn("积分与流水不一致",
			zap.String("staff_id", d.StaffID),
			zap.String("employee_id", d.EmployeeID),
			zap.Int("score", d.Score),
			zap.Int("history_sum", d.HistorySum),
		)
	}
	j.logger.Info("积分对账完成",
		zap.Int("checked", report.Checked),
		zap.Int("drifts", len(report.Drifts)),
	)
}
