package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"culture-points/internal/dto"
	"culture-points/internal/model"
	"culture-points/internal/repository"
	"culture-points/internal/rubric"
)

// ── 积分申请业务错误 ──

var (
	ErrValidation          = errors.New("参数校验失败")
	ErrInvalidTransition   = errors.New("申请已处理，不能重复审批")
	ErrApplicationNotFound = errors.New("申请不存在")
	ErrResubmitNotAllowed  = errors.New("仅被驳回的申请可以重新提交")
)

// 默认审批意见
const (
	DefaultApproveOpinion = "核实无误，予以通过。"
	DefaultRejectOpinion  = "不符合要求。"
)

// 字段长度上限（按字符计）
const (
	maxTitleLen        = 50
	maxDescriptionLen  = 500
	maxEvidenceLen     = 200
	maxRepeatReasonLen = 200
)

// ApplicationService 积分申请生命周期：pending → approved | rejected
type ApplicationService interface {
	Submit(ctx context.Context, req *dto.SubmitApplicationRequest, applicantID string) (*dto.ApplicationResponse, error)
	// Approve 审批通过并在同一事务内入账
	Approve(ctx context.Context, id string, req *dto.ReviewRequest, reviewerID, reviewerRole string) (*dto.ApplicationResponse, error)
	Reject(ctx context.Context, id string, req *dto.ReviewRequest, reviewerID, reviewerRole string) (*dto.ApplicationResponse, error)
	// ListPending 待审批申请，按提交时间升序
	ListPending(ctx context.Context, callerRole string) ([]dto.ApplicationResponse, error)
	// Resubmit 以被驳回的申请为模板创建新申请，原申请保持 rejected
	Resubmit(ctx context.Context, originalID string, req *dto.ResubmitRequest, callerID string) (*dto.ApplicationResponse, error)
	Get(ctx context.Context, id, callerID, callerRole string) (*dto.ApplicationResponse, error)
	ListMine(ctx context.Context, req *dto.ApplicationListRequest, callerID string) ([]dto.ApplicationResponse, int64, error)
	List(ctx context.Context, req *dto.ApplicationListRequest, callerRole string) ([]dto.ApplicationResponse, int64, error)
}

type applicationService struct {
	repo   *repository.Repository
	tx     txRunner
	ledger LedgerService
	now    func() time.Time
	logger *zap.Logger
}

// NewApplicationService 创建 ApplicationService 实例
func NewApplicationService(repo *repository.Repository, ledger LedgerService, logger *zap.Logger) ApplicationService {
	return &applicationService{
		repo:   repo,
		tx:     repo,
		ledger: ledger,
		now:    time.Now,
		logger: logger,
	}
}

// ────────────────────── Submit ──────────────────────

func (s *applicationService) Submit(ctx context.Context, req *dto.SubmitApplicationRequest, applicantID string) (*dto.ApplicationResponse, error) {
	return s.submit(ctx, req, applicantID, nil)
}

func (s *applicationService) submit(ctx context.Context, req *dto.SubmitApplicationRequest, applicantID string, sourceID *string) (*dto.ApplicationResponse, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	applicant, err := s.repo.Staff.GetByID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		s.logger.Error("查询申请人失败", zap.String("staff_id", applicantID), zap.Error(err))
		return nil, err
	}
	if !applicant.IsActive() {
		return nil, ErrAccountFrozen
	}

	app := &model.Application{
		ApplicantID:         applicant.StaffID,
		ApplicantName:       applicant.Name,
		Title:               strings.TrimSpace(req.Title),
		Description:         strings.TrimSpace(req.Description),
		Dimension:           req.Dimension,
		BehaviorLevel:       req.BehaviorLevel,
		BehaviorItems:       model.StringList(dedupe(req.BehaviorItems)),
		EvidenceDescription: strings.TrimSpace(req.EvidenceDescription),
		IsRepeat:            req.IsRepeat,
		RepeatReason:        strings.TrimSpace(req.RepeatReason),
		SourceApplicationID: sourceID,
		RequestedScore:      rubric.Score(req.BehaviorLevel),
		SubmitTime:          s.now(),
		Status:              model.ApplicationPending,
	}
	app.CreatedBy = &applicant.StaffID

	if err := s.repo.Application.Create(ctx, app); err != nil {
		s.logger.Error("创建申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("提交积分申请",
		zap.String("application_id", app.ApplicationID),
		zap.String("applicant_id", app.ApplicantID),
		zap.String("dimension", app.Dimension),
		zap.Int("requested_score", app.RequestedScore),
	)

	resp := toApplicationResponse(app)
	return &resp, nil
}

// validateSubmission 校验必填项、取值范围与长度
func validateSubmission(req *dto.SubmitApplicationRequest) error {
	title := strings.TrimSpace(req.Title)
	desc := strings.TrimSpace(req.Description)

	switch {
	case title == "":
		return fmt.Errorf("%w: 案例标题不能为空", ErrValidation)
	case desc == "":
		return fmt.Errorf("%w: 案例描述不能为空", ErrValidation)
	case req.BehaviorLevel == "":
		return fmt.Errorf("%w: 请选择行为等级", ErrValidation)
	case !rubric.ValidDimension(req.Dimension):
		return fmt.Errorf("%w: 无效的价值观维度 %q", ErrValidation, req.Dimension)
	case !rubric.ValidLevel(req.BehaviorLevel):
		return fmt.Errorf("%w: 无效的行为等级 %q", ErrValidation, req.BehaviorLevel)
	case utf8.RuneCountInString(title) > maxTitleLen:
		return fmt.Errorf("%w: 案例标题不能超过 %d 字", ErrValidation, maxTitleLen)
	case utf8.RuneCountInString(desc) > maxDescriptionLen:
		return fmt.Errorf("%w: 案例描述不能超过 %d 字", ErrValidation, maxDescriptionLen)
	case utf8.RuneCountInString(strings.TrimSpace(req.EvidenceDescription)) > maxEvidenceLen:
		return fmt.Errorf("%w: 佐证说明不能超过 %d 字", ErrValidation, maxEvidenceLen)
	case req.IsRepeat && strings.TrimSpace(req.RepeatReason) == "":
		return fmt.Errorf("%w: 重复申报需填写原因", ErrValidation)
	case utf8.RuneCountInString(strings.TrimSpace(req.RepeatReason)) > maxRepeatReasonLen:
		return fmt.Errorf("%w: 重复申报原因不能超过 %d 字", ErrValidation, maxRepeatReasonLen)
	}

	for _, code := range req.BehaviorItems {
		if _, ok := rubric.LookupItem(req.Dimension, req.BehaviorLevel, code); !ok {
			return fmt.Errorf("%w: 行为范例 %s 不属于 %s/%s", ErrValidation, code, req.Dimension, req.BehaviorLevel)
		}
	}
	return nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *applicationService) Approve(ctx context.Context, id string, req *dto.ReviewRequest, reviewerID, reviewerRole string) (*dto.ApplicationResponse, error) {
	return s.review(ctx, id, model.ApplicationApproved, opinionOr(req, DefaultApproveOpinion), reviewerID, reviewerRole)
}

func (s *applicationService) Reject(ctx context.Context, id string, req *dto.ReviewRequest, reviewerID, reviewerRole string) (*dto.ApplicationResponse, error) {
	return s.review(ctx, id, model.ApplicationRejected, opinionOr(req, DefaultRejectOpinion), reviewerID, reviewerRole)
}

// review 在单个事务内完成状态流转；通过时同事务入账，任一步失败整体回滚
func (s *applicationService) review(ctx context.Context, id, toStatus, opinion, reviewerID, reviewerRole string) (*dto.ApplicationResponse, error) {
	if !model.IsReviewerRole(reviewerRole) {
		return nil, ErrNoPermission
	}

	var app *model.Application
	at := s.now()

	err := s.tx.Transaction(ctx, func(tx *repository.Repository) error {
		current, err := tx.Application.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}
		if !current.IsPending() {
			return ErrInvalidTransition
		}

		// 条件更新：仅当仍为 pending 时生效，并发审批只有一方成功
		ok, err := tx.Application.Transition(ctx, id, toStatus, opinion, reviewerID, at)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		if toStatus == model.ApplicationApproved {
			if err := s.ledger.CreditApproval(ctx, tx, Credit{
				StaffID:       current.ApplicantID,
				ApplicationID: current.ApplicationID,
				Dimension:     current.Dimension,
				Title:         current.Title,
				Amount:        current.RequestedScore,
				Opinion:       opinion,
			}); err != nil {
				return err
			}
		}

		current.Status = toStatus
		current.AdminOpinion = opinion
		current.ReviewedBy = &reviewerID
		current.ReviewedAt = &at
		app = current
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrApplicationNotFound) && !errors.Is(err, ErrInvalidTransition) {
			s.logger.Error("审批申请失败",
				zap.String("application_id", id),
				zap.String("to_status", toStatus),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("审批申请",
		zap.String("application_id", id),
		zap.String("status", toStatus),
		zap.String("reviewer", reviewerID),
	)

	resp := toApplicationResponse(app)
	return &resp, nil
}

func opinionOr(req *dto.ReviewRequest, def string) string {
	if req == nil || strings.TrimSpace(req.Opinion) == "" {
		return def
	}
	return strings.TrimSpace(req.Opinion)
}

// ────────────────────── ListPending ──────────────────────

func (s *applicationService) ListPending(ctx context.Context, callerRole string) ([]dto.ApplicationResponse, error) {
	if !model.IsReviewerRole(callerRole) {
		return nil, ErrNoPermission
	}

	list, err := s.repo.Application.ListPending(ctx)
	if err != nil {
		s.logger.Error("查询待审批申请失败", zap.Error(err))
		return nil, err
	}
	return toApplicationResponses(list), nil
}

// ────────────────────── Resubmit ──────────────────────

func (s *applicationService) Resubmit(ctx context.Context, originalID string, req *dto.ResubmitRequest, callerID string) (*dto.ApplicationResponse, error) {
	original, err := s.repo.Application.GetByID(ctx, originalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.String("application_id", originalID), zap.Error(err))
		return nil, err
	}
	if original.ApplicantID != callerID {
		return nil, ErrNoPermission
	}
	if original.Status != model.ApplicationRejected {
		return nil, ErrResubmitNotAllowed
	}

	next := &dto.SubmitApplicationRequest{
		Title:               original.Title,
		Description:         original.Description,
		Dimension:           original.Dimension,
		BehaviorLevel:       original.BehaviorLevel,
		BehaviorItems:       []string(original.BehaviorItems),
		EvidenceDescription: original.EvidenceDescription,
		IsRepeat:            true,
		RepeatReason:        req.RepeatReason,
	}
	if req.Title != nil {
		next.Title = *req.Title
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.BehaviorItems != nil {
		next.BehaviorItems = req.BehaviorItems
	}
	if req.EvidenceDescription != nil {
		next.EvidenceDescription = *req.EvidenceDescription
	}

	return s.submit(ctx, next, callerID, &original.ApplicationID)
}

// ────────────────────── Get / List ──────────────────────

func (s *applicationService) Get(ctx context.Context, id, callerID, callerRole string) (*dto.ApplicationResponse, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.String("application_id", id), zap.Error(err))
		return nil, err
	}
	if app.ApplicantID != callerID && !model.IsReviewerRole(callerRole) {
		return nil, ErrNoPermission
	}
	resp := toApplicationResponse(app)
	return &resp, nil
}

func (s *applicationService) ListMine(ctx context.Context, req *dto.ApplicationListRequest, callerID string) ([]dto.ApplicationResponse, int64, error) {
	filter := repository.ApplicationFilter{
		ApplicantID: callerID,
		Status:      req.Status,
		Dimension:   req.Dimension,
	}
	list, total, err := s.repo.Application.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询我的申请失败", zap.Error(err))
		return nil, 0, err
	}
	return toApplicationResponses(list), total, nil
}

func (s *applicationService) List(ctx context.Context, req *dto.ApplicationListRequest, callerRole string) ([]dto.ApplicationResponse, int64, error) {
	if !model.IsReviewerRole(callerRole) {
		return nil, 0, ErrNoPermission
	}
	filter := repository.ApplicationFilter{
		Status:    req.Status,
		Dimension: req.Dimension,
	}
	list, total, err := s.repo.Application.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询申请列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toApplicationResponses(list), total, nil
}

// ── 内部辅助方法 ──

func toApplicationResponse(app *model.Application) dto.ApplicationResponse {
	resp := dto.ApplicationResponse{
		ID:                  app.ApplicationID,
		ApplicantID:         app.ApplicantID,
		ApplicantName:       app.ApplicantName,
		Title:               app.Title,
		Description:         app.Description,
		Dimension:           app.Dimension,
		DimensionLabel:      rubric.DimensionLabel(app.Dimension),
		BehaviorLevel:       app.BehaviorLevel,
		BehaviorItems:       []string(app.BehaviorItems),
		EvidenceDescription: app.EvidenceDescription,
		IsRepeat:            app.IsRepeat,
		RepeatReason:        app.RepeatReason,
		RequestedScore:      app.RequestedScore,
		SubmitTime:          app.SubmitTime.Format(dateTimeLayout),
		Status:              app.Status,
		AdminOpinion:        app.AdminOpinion,
	}
	if resp.BehaviorItems == nil {
		resp.BehaviorItems = []string{}
	}
	if app.SourceApplicationID != nil {
		resp.SourceApplicationID = *app.SourceApplicationID
	}
	if app.ReviewedBy != nil {
		resp.ReviewedBy = *app.ReviewedBy
	}
	if app.ReviewedAt != nil {
		resp.ReviewedAt = app.ReviewedAt.Format(dateTimeLayout)
	}
	return resp
}

func toApplicationResponses(list []model.Application) []dto.ApplicationResponse {
	result := make([]dto.ApplicationResponse, 0, len(list))
	for i := range list {
		result = append(result, toApplicationResponse(&list[i]))
	}
	return result
}

// dedupe 去重并保持原有顺序
func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, v := range items {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
