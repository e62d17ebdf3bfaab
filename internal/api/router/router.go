package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crewdesk/config"
	"crewdesk/internal/api/handler"
	"crewdesk/internal/api/middleware"
	"crewdesk/internal/model"
	"crewdesk/pkg/jwt"
	redispkg "crewdesk/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redispkg.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(8 << 20)) // ICS 上传限 5MB，留余量

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			adminOnly := middleware.RoleAuth(model.RoleAdmin)
			adminOrStaff := middleware.RoleAuth(model.RoleAdmin, model.RoleStaff)

			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.POST("", adminOnly, h.User.Create)
				users.GET("", adminOrStaff, h.User.List)
				users.GET("/:id", adminOrStaff, h.User.Get)
				users.PUT("/:id", adminOnly, h.User.Update)
				users.PUT("/:id/role", adminOnly, h.User.AssignRole)
				users.GET("/:id/permissions", adminOnly, h.Permission.ListByUser)
			}

			// 客户公司模块
			companies := authorized.Group("/companies")
			{
				companies.POST("", adminOrStaff, h.Company.Create)
				companies.GET("", adminOrStaff, h.Company.List)
				companies.GET("/:id", h.Company.Get)
				companies.PUT("/:id", adminOrStaff, h.Company.Update)
			}

			// 用工项目模块
			jobs := authorized.Group("/jobs")
			{
				jobs.POST("", adminOrStaff, h.Job.Create)
				jobs.GET("", h.Job.List)
				jobs.GET("/:id", h.Job.Get)
				jobs.PUT("/:id", adminOrStaff, h.Job.Update)
				jobs.GET("/:id/shifts", h.Shift.ListByJob)
				jobs.POST("/:id/shifts/import", adminOrStaff, h.Shift.ImportCalendar)
			}

			// 班次与派工模块
			shifts := authorized.Group("/shifts")
			{
				shifts.POST("", adminOrStaff, h.Shift.Create)
				shifts.GET("/:id", h.Shift.Get)
				shifts.GET("/:id/fulfillment", h.Shift.Fulfillment)

				// 派工与撤销：管理员/内勤/有授权的工头（Service 层判定）
				shifts.POST("/:id/assignments", h.Shift.AssignWorker)
				shifts.DELETE("/:id/assignments/:user_id", h.Shift.UnassignWorker)

				// 出勤打卡：操作者资格由 Service 层判定
				attendance := shifts.Group("/:id/attendance")
				{
					attendance.POST("/break-all", h.Attendance.StartBreakAll)
					attendance.POST("/end-all", h.Attendance.EndShiftAll)
					attendance.POST("/:user_id/clock-in", h.Attendance.ClockIn)
					attendance.POST("/:user_id/clock-out", h.Attendance.ClockOut)
					attendance.POST("/:user_id/end-shift", h.Attendance.EndShift)
					attendance.POST("/:user_id/no-show", h.Attendance.MarkNoShow)
				}

				// 班次工时单入口
				shifts.POST("/:id/timesheet", h.Timesheet.GetOrCreateForShift)
			}

			// 工时单审批模块
			timesheets := authorized.Group("/timesheets")
			{
				timesheets.GET("/:id", h.Timesheet.Get)
				timesheets.GET("/:id/detail", h.Timesheet.Detail)
				timesheets.POST("/:id/submit", h.Timesheet.Submit)
				timesheets.POST("/:id/approve/company", h.Timesheet.ApproveAsCompany)
				timesheets.POST("/:id/approve/manager", adminOrStaff, h.Timesheet.ApproveAsManager)
				timesheets.POST("/:id/reject", h.Timesheet.Reject)
				timesheets.POST("/:id/unlock", adminOnly, h.Timesheet.Unlock)
				timesheets.GET("/:id/audit-logs", h.Timesheet.ListAuditLogs)
				timesheets.GET("/:id/export", h.Timesheet.Export)
			}

			// 工头权限模块
			permissions := authorized.Group("/permissions")
			{
				permissions.POST("", adminOnly, h.Permission.Grant)
				permissions.DELETE("/:id", adminOnly, h.Permission.Revoke)
			}

			// 工种目录模块
			roles := authorized.Group("/roles")
			{
				roles.GET("", h.Role.List)
				roles.POST("", adminOnly, h.Role.Register)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
