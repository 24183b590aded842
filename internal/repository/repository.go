package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Role         RoleRepository
	Permission   PermissionRepository
	Scope        SupervisorScopeRepository
	College      CollegeRepository
	ResearchRoom ResearchRoomRepository
	Timetable    TimetableRepository
	Evaluation   EvaluationRepository
	Dimension    DimensionRepository
	Stat         EvaluationStatRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Role:         NewRoleRepo(db),
		Permission:   NewPermissionRepo(db),
		Scope:        NewSupervisorScopeRepo(db),
		College:      NewCollegeRepo(db),
		ResearchRoom: NewResearchRoomRepo(db),
		Timetable:    NewTimetableRepo(db),
		Evaluation:   NewEvaluationRepo(db),
		Dimension:    NewDimensionRepo(db),
		Stat:         NewEvaluationStatRepo(db),
	}
}
