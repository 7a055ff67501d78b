package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/gradetrack-api/internal/handler"
	"github.com/noah-isme/gradetrack-api/internal/middleware"
	"github.com/noah-isme/gradetrack-api/internal/models"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth        *handler.AuthHandler
	Courses     *handler.CourseHandler
	Enrollments *handler.EnrollmentHandler
	Grades      *handler.GradeHandler
	PastGrades  *handler.PastGradeHandler
	Transcripts *handler.TranscriptHandler
	Analytics   *handler.AnalyticsHandler
	Users       *handler.UserHandler
	Metrics     *handler.MetricsHandler
}

// Options toggles optional route groups.
type Options struct {
	APIPrefix         string
	EnableDocs        bool
	EnableTranscripts bool
	EnableAnalytics   bool
	TokenValidator    middleware.TokenValidator
}

// Register mounts the ops endpoints at the root and the API under opts.APIPrefix.
func Register(r *gin.Engine, h Handlers, opts Options) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	secured := api.Group("")
	secured.Use(middleware.JWT(opts.TokenValidator))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)
	secured.PUT("/auth/settings", h.Users.UpdateSettings)
	secured.DELETE("/auth/account", h.Users.DeleteAccount)

	courses := secured.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.POST("", h.Courses.Create)
	courses.GET("/:id", h.Courses.Get)
	courses.PUT("/:id", h.Courses.Update)
	courses.DELETE("/:id", h.Courses.Delete)

	enrollments := secured.Group("/enrollments")
	enrollments.GET("", h.Enrollments.List)
	enrollments.POST("", h.Enrollments.Create)
	enrollments.GET("/:id", h.Enrollments.Get)
	enrollments.PUT("/:id", h.Enrollments.Update)
	enrollments.DELETE("/:id", h.Enrollments.Delete)
	enrollments.GET("/:id/grades", h.Enrollments.ListGrades)
	enrollments.POST("/:id/grades", h.Enrollments.UpsertGrade)
	enrollments.DELETE("/:id/grades/:assignmentId", h.Enrollments.DeleteGrade)
	enrollments.PATCH("/:id/grades/:assignmentId/status", h.Enrollments.SetStatus)
	enrollments.GET("/:id/grade", h.Grades.Breakdown)
	enrollments.POST("/:id/simulate", h.Grades.Simulate)

	pastGrades := secured.Group("/past-grades")
	pastGrades.GET("", h.PastGrades.List)
	pastGrades.POST("", h.PastGrades.Create)
	pastGrades.GET("/gpa", h.PastGrades.GPA)
	pastGrades.POST("/import", h.PastGrades.Import)
	pastGrades.POST("/transcript", middleware.RequireFeature("transcripts", opts.EnableTranscripts), h.PastGrades.Transcript)
	pastGrades.PUT("/:id", h.PastGrades.Update)
	pastGrades.DELETE("/:id", h.PastGrades.Delete)

	transcripts := secured.Group("/transcripts", middleware.RequireFeature("transcripts", opts.EnableTranscripts))
	transcripts.GET("/:token", h.Transcripts.Download)

	analytics := secured.Group("/analytics", middleware.RequireFeature("analytics", opts.EnableAnalytics))
	analytics.GET("/upcoming", h.Analytics.Upcoming)

	admin := secured.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/system", h.Metrics.System)
	admin.GET("/stats", h.Users.Stats)
	admin.GET("/users", h.Users.List)
	admin.GET("/users/:id", h.Users.Get)
	admin.POST("/users/:id/reset-password", h.Users.ResetPassword)
	admin.DELETE("/users/:id", h.Users.Delete)
}
