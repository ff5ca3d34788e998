package server

import (
	"net/http"

	"prudence/internal/config"
	"prudence/internal/handlers"
	"prudence/internal/middleware"
	"prudence/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("prudence_session", store))

	r.Use(middleware.InjectUser())

	api := r.Group("/api")

	// AUTH
	api.POST("/auth/register", handlers.Register)
	api.POST("/auth/login", handlers.Login)
	api.POST("/auth/logout", handlers.Logout)

	auth := api.Group("/")
	auth.Use(middleware.RequireAuth())

	auth.GET("/auth/user", handlers.CurrentUser)
	auth.GET("/users", handlers.ListUsers)

	// РИСКИ
	auth.GET("/risks", handlers.ListRisks)
	auth.POST("/risks", handlers.CreateRisk)
	auth.GET("/risks/my_risks", handlers.MyRisks)
	auth.GET("/risks/matrix", handlers.RiskMatrix)
	auth.GET("/risks/:id", handlers.GetRisk)
	auth.PUT("/risks/:id", handlers.UpdateRisk)
	auth.DELETE("/risks/:id", handlers.DeleteRisk)

	// КОНТРОЛИ
	auth.GET("/controls", handlers.ListControls)
	auth.POST("/controls", handlers.CreateControl)
	auth.GET("/controls/my_controls", handlers.MyControls)
	auth.GET("/controls/:id", handlers.GetControl)
	auth.PUT("/controls/:id", handlers.UpdateControl)
	auth.DELETE("/controls/:id", handlers.DeleteControl)

	// ОЦЕНКИ РИСКОВ
	auth.GET("/risk-assessments", handlers.ListAssessments)
	auth.POST("/risk-assessments", handlers.CreateAssessment)
	auth.GET("/risk-assessments/:id", handlers.GetAssessment)
	auth.PUT("/risk-assessments/:id", handlers.UpdateAssessment)
	auth.DELETE("/risk-assessments/:id", handlers.DeleteAssessment)

	// СПРАВОЧНИКИ (только чтение)
	auth.GET("/risk-types", handlers.ListRiskTypes)
	auth.GET("/risk-types/:id", handlers.GetRiskType)
	auth.GET("/actions", handlers.ListActions)
	auth.GET("/actions/:id", handlers.GetAction)

	// ДАШБОРД
	auth.GET("/dashboard/stats", handlers.DashboardStats)

	// АУДИТ
	auth.GET("/audit",
		middleware.RequireRole(models.RoleL3),
		handlers.ListAuditLogs,
	)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
