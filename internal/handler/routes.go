package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adisurya/sims-api/internal/middleware"
	"github.com/adisurya/sims-api/internal/models"
	"github.com/adisurya/sims-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth        *AuthHandler
	Students    *StudentHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Grades      *GradeHandler
	Attendance  *AttendanceHandler
	Dashboard   *DashboardHandler
	Reports     *ReportHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts the API surface under the given prefix. Writes are
// restricted to admin and teacher roles; destructive record deletes are
// admin-only.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.POST("/auth/register", adminOnly, h.Auth.Register)

	protected.GET("/students", h.Students.List)
	protected.GET("/students/recent", h.Students.Recent)
	protected.GET("/students/:id", h.Students.Get)
	protected.POST("/students", staff, h.Students.Create)
	protected.PUT("/students/:id", staff, h.Students.Update)
	protected.DELETE("/students/:id", adminOnly, h.Students.Delete)

	protected.GET("/courses", h.Courses.List)
	protected.GET("/courses/:id", h.Courses.Get)
	protected.POST("/courses", staff, h.Courses.Create)
	protected.PUT("/courses/:id", staff, h.Courses.Update)
	protected.DELETE("/courses/:id", adminOnly, h.Courses.Delete)

	protected.GET("/enrollments", h.Enrollments.List)
	protected.GET("/enrollments/:id", h.Enrollments.Get)
	protected.POST("/enrollments", staff, h.Enrollments.Create)
	protected.PUT("/enrollments/:id", staff, h.Enrollments.Update)
	protected.DELETE("/enrollments/:id", staff, h.Enrollments.Delete)

	protected.GET("/grades", h.Grades.List)
	protected.GET("/grades/:id", h.Grades.Get)
	protected.POST("/grades", staff, h.Grades.Create)
	protected.PUT("/grades/:id", staff, h.Grades.Update)
	protected.DELETE("/grades/:id", staff, h.Grades.Delete)

	protected.GET("/attendance/roster", h.Attendance.Roster)
	protected.GET("/attendance/details", h.Attendance.Details)
	protected.GET("/attendance/summary", h.Attendance.Summary)
	protected.POST("/attendance", staff, h.Attendance.Save)

	protected.GET("/dashboard/stats", h.Dashboard.Stats)

	protected.GET("/reports/attendance/export", staff, h.Reports.AttendanceExport)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})
}
