package handler

import "teaching-eval/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Org        *OrgHandler
	Scope      *ScopeHandler
	Timetable  *TimetableHandler
	Evaluation *EvaluationHandler
	Task       *TaskHandler
	Stats      *StatsHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Org:        NewOrgHandler(svc.Org),
		Scope:      NewScopeHandler(svc.Access),
		Timetable:  NewTimetableHandler(svc.Timetable, svc.Import, svc.ICSFeed, svc.Access),
		Evaluation: NewEvaluationHandler(svc.Evaluation, svc.Stats, svc.Access),
		Task:       NewTaskHandler(svc.Task, svc.Access),
		Stats:      NewStatsHandler(svc.Stats, svc.Access),
	}
}
