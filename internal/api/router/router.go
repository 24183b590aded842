package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teaching-eval/backend/config"
	"teaching-eval/backend/internal/api/handler"
	"teaching-eval/backend/internal/api/middleware"
	"teaching-eval/backend/internal/model"
	"teaching-eval/backend/internal/service"
	"teaching-eval/backend/pkg/jwt"
	"teaching-eval/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, svc *service.Service, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 角色组合别名，路由表里反复用到
	admins := []string{model.RoleSchoolAdmin, model.RoleCollegeAdmin}
	evaluators := []string{model.RoleSchoolAdmin, model.RoleCollegeAdmin, model.RoleSupervisor, model.RoleTeacher}
	viewers := []string{model.RoleSchoolAdmin, model.RoleCollegeAdmin, model.RoleSupervisor}

	access := svc.Access

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.GET("", middleware.Authorize(access, admins, "user:manage"), h.User.ListUsers)
				users.POST("", middleware.Authorize(access, []string{model.RoleSchoolAdmin}, "user:manage"), h.User.CreateUser)
				users.GET("/:id", middleware.Authorize(access, admins, "user:manage"), h.User.GetUser)
				users.PUT("/:id", middleware.Authorize(access, []string{model.RoleSchoolAdmin}, "user:manage"), h.User.UpdateUser)
				users.DELETE("/:id", middleware.Authorize(access, []string{model.RoleSchoolAdmin}, "user:manage"), h.User.DeleteUser)
				users.PUT("/:id/roles", middleware.Authorize(access, []string{model.RoleSchoolAdmin}, "user:manage"), h.User.AssignRoles)
			}

			// 组织架构模块
			colleges := authorized.Group("/colleges")
			{
				colleges.GET("", h.Org.ListColleges)
				colleges.POST("", middleware.Authorize(access, []string{model.RoleSchoolAdmin}), h.Org.CreateCollege)
				colleges.PUT("/:id", middleware.Authorize(access, []string{model.RoleSchoolAdmin}), h.Org.UpdateCollege)
				colleges.DELETE("/:id", middleware.Authorize(access, []string{model.RoleSchoolAdmin}), h.Org.DeleteCollege)
			}
			rooms := authorized.Group("/research-rooms")
			{
				rooms.GET("", h.Org.ListResearchRooms)
				rooms.POST("", middleware.Authorize(access, []string{model.RoleSchoolAdmin}), h.Org.CreateResearchRoom)
				rooms.PUT("/:id", middleware.Authorize(access, []string{model.RoleSchoolAdmin}), h.Org.UpdateResearchRoom)
				rooms.DELETE("/:id", middleware.Authorize(access, []string{model.RoleSchoolAdmin}), h.Org.DeleteResearchRoom)
			}

			// 督导负责范围模块
			supervisors := authorized.Group("/supervisors")
			{
				supervisors.GET("/me/scope", h.Scope.GetMyScope)
				supervisors.GET("/:id/scope", middleware.Authorize(access, admins, "scope:manage"), h.Scope.GetScope)
				supervisors.PUT("/:id/scope", middleware.Authorize(access, []string{model.RoleSchoolAdmin}, "scope:manage"), h.Scope.ReplaceScope)
			}

			// 课表模块
			timetables := authorized.Group("/timetables")
			{
				timetables.GET("/pending", h.Timetable.ListMyPending)
				timetables.GET("/pending.ics", h.Timetable.PendingFeed)
				timetables.GET("/completed", h.Timetable.ListMyCompleted)
				timetables.GET("", middleware.Authorize(access, viewers, "timetable:view"), h.Timetable.ListTimetables)
				timetables.GET("/:id", middleware.Authorize(access, evaluators, "timetable:view"), h.Timetable.GetTimetable)
				timetables.POST("", middleware.Authorize(access, admins, "timetable:manage"), h.Timetable.UpsertTimetable)
				timetables.POST("/import", middleware.Authorize(access, admins, "timetable:manage"), h.Timetable.ImportTimetables)
				timetables.DELETE("/:id", middleware.Authorize(access, admins, "timetable:manage"), h.Timetable.DeleteTimetable)
			}

			// 评教模块
			evaluations := authorized.Group("/evaluations")
			{
				evaluations.GET("/dimensions", h.Evaluation.ListDimensions)
				evaluations.GET("/mine", middleware.Authorize(access, evaluators, "evaluation:view"), h.Evaluation.ListMyEvaluations)
				evaluations.POST("", middleware.Authorize(access, evaluators, "evaluation:submit"), h.Evaluation.SubmitEvaluation)
				evaluations.GET("", middleware.Authorize(access, admins, "evaluation:view"), h.Evaluation.ListEvaluations)
				evaluations.GET("/:id", middleware.Authorize(access, viewers, "evaluation:view"), h.Evaluation.GetEvaluation)
				evaluations.PUT("/:id/review", middleware.Authorize(access, admins, "evaluation:review"), h.Evaluation.ReviewEvaluation)
				evaluations.DELETE("/:id", middleware.Authorize(access, evaluators, "evaluation:submit"), h.Evaluation.DeleteEvaluation)
			}

			// 督导任务模块
			tasks := authorized.Group("/tasks")
			{
				tasks.GET("/mine", middleware.Authorize(access, []string{model.RoleSupervisor}, "evaluation:view"), h.Task.ListMyTasks)
				tasks.POST("/assign", middleware.Authorize(access, admins, "evaluation:review"), h.Task.AssignTasks)
				tasks.GET("", middleware.Authorize(access, admins, "evaluation:view"), h.Task.ListTasks)
			}

			// 统计模块
			stats := authorized.Group("/stats")
			{
				stats.GET("/me", h.Stats.GetMyStats)
				stats.GET("/teachers/:id", middleware.Authorize(access, viewers, "stats:view"), h.Stats.GetTeacherStats)
				stats.GET("/colleges/:id", middleware.Authorize(access, viewers, "stats:view"), h.Stats.GetCollegeStats)
				stats.GET("/school", middleware.Authorize(access, viewers, "stats:view"), h.Stats.GetSchoolStats)
				stats.GET("/supervisors", middleware.Authorize(access, admins, "stats:view"), h.Stats.GetSupervisorStats)
				stats.GET("/supervisors/me", middleware.Authorize(access, []string{model.RoleSupervisor}, "stats:view"), h.Stats.GetMySupervisorStats)
				stats.POST("/teachers/:id/refresh", middleware.Authorize(access, admins, "stats:view"), h.Stats.RefreshTeacherSnapshot)
				stats.POST("/colleges/:id/refresh", middleware.Authorize(access, admins, "stats:view"), h.Stats.RefreshCollegeSnapshot)
			}
		}
	}

	return r
}
