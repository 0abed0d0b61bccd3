package handler

import "culture-points/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Rubric      *RubricHandler
	Polish      *PolishHandler
	Application *ApplicationHandler
	Staff       *StaffHandler
	Analysis    *AnalysisHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Rubric:      NewRubricHandler(),
		Polish:      NewPolishHandler(svc.Polish),
		Application: NewApplicationHandler(svc.Application),
		Staff:       NewStaffHandler(svc.Staff, svc.Export),
		Analysis:    NewAnalysisHandler(svc.Analysis, svc.Ledger),
	}
}
