package api

import (
	stdhttp "net/http"

	intconfig "backoffice/internal/config"
	"backoffice/internal/domain"
	h "backoffice/internal/http/handlers"
	"backoffice/internal/http/middleware"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the production dependencies from env.
func NewRouter(env intconfig.Env) *gin.Engine {
	return NewRouterWithDeps(env, h.DepsFromEnv(env))
}

// NewRouterWithDeps builds the engine around the given handler dependencies.
func NewRouterWithDeps(env intconfig.Env, deps h.Deps) *gin.Engine {
	h.Configure(deps)
	h.RegisterValidators()

	metrics := middleware.NewHTTPMetrics("backoffice")

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins), metrics.Middleware())

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Log().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.Auth(deps.JWTSecret)
	loginLimiter := middleware.NewPerMinuteLimiter(env.LoginRatePerMinute)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)
		api.GET("/metrics", metrics.Handler())

		// Auth
		api.POST("/auth/login", middleware.RateLimit(loginLimiter), h.Login)

		staff := api.Group("", auth, middleware.RequireRoles(domain.RoleAdmin, domain.RoleAcademic))

		// Courses
		staff.GET("/courses", h.ListCourses)

		// Course versions
		versions := staff.Group("/versions")
		versions.GET("", h.ListVersions)
		versions.POST("", h.CreateVersion)
		versions.GET("/export.csv", h.ExportVersionsCSV)
		versions.GET("/export.pdf", h.ExportVersionsPDF)
		versions.GET("/live", h.LiveVersions)
		versions.POST("/view-state", h.ReduceVersionViewState)
		versions.GET("/:id", h.GetVersion)
		versions.PUT("/:id", h.UpdateVersion)
		versions.DELETE("/:id", h.DeleteVersion)
		versions.PATCH("/:id/status", h.ChangeVersionStatus)
		versions.GET("/:id/duplicate", h.DuplicateVersion)

		// Surveys (any signed-in user)
		surveys := api.Group("/surveys", auth)
		surveys.GET("", h.ListSurveys)
		surveys.POST("/:id/responses", h.SubmitSurveyResponse)

		// Reports
		reports := api.Group("/reports", auth, middleware.RequireRoles(domain.RoleAdmin, domain.RoleFinance))
		reports.GET("/finance", h.GetFinanceReport)
		reports.GET("/finance/pdf", h.GetFinanceReportPDF)
		reports.GET("/course-revenue", h.GetCourseRevenue)
	}

	h.SetRouter(r)
	return r
}
