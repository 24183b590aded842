package service

import (
	"go.uber.org/zap"

	"teaching-eval/backend/config"
	"teaching-eval/backend/internal/repository"
	"teaching-eval/backend/pkg/jwt"
	"teaching-eval/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Org        OrgService
	Access     AccessService
	Timetable  TimetableService
	Import     TimetableImportService
	ICSFeed    ICSFeedService
	Evaluation EvaluationService
	Task       TaskService
	Stats      StatsService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	timetable := NewTimetableService(repo, logger)
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:       NewUserService(repo, logger),
		Org:        NewOrgService(repo, logger),
		Access:     NewAccessService(repo, logger),
		Timetable:  timetable,
		Import:     NewTimetableImportService(repo, timetable, logger),
		ICSFeed:    NewICSFeedService(timetable, logger),
		Evaluation: NewEvaluationService(repo, logger),
		Task:       NewTaskService(repo, logger),
		Stats:      NewStatsService(repo, rdb, &cfg.Stats, logger),
	}
}
