package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/middleware"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/internal/service"
)

// Handlers groups every endpoint handler of the gateway.
type Handlers struct {
	Auth          *AuthHandler
	Dashboard     *DashboardHandler
	Users         *UserHandler
	Students      *StudentHandler
	Teachers      *TeacherHandler
	Fees          *FeeHandler
	Library       *LibraryHandler
	Assignments   *AssignmentHandler
	Communication *CommunicationHandler
	Admin         *AdminHandler
	Metrics       *MetricsHandler
}

// NewHandlers builds every handler over the console services.
func NewHandlers(console *service.Console, metrics *service.MetricsService, checks map[string]ReadinessCheck, pageSize int) Handlers {
	return Handlers{
		Auth:          NewAuthHandler(console.Auth),
		Dashboard:     NewDashboardHandler(console.Dashboard),
		Users:         NewUserHandler(console.Users, console.Forms, console.NewSearchBox(dto.UserFilter{})),
		Students:      NewStudentHandler(console.Students),
		Teachers:      NewTeacherHandler(console.Teachers),
		Fees:          NewFeeHandler(console.Fees),
		Library:       NewLibraryHandler(console.Library),
		Assignments:   NewAssignmentHandler(console.Assignments),
		Communication: NewCommunicationHandler(console.Notices, console.Messages, pageSize),
		Admin:         NewAdminHandler(console.Roles, console.Settings),
		Metrics:       NewMetricsHandler(metrics, checks),
	}
}

// Register mounts every route on r. auth reports the console session for the
// guarded groups; audit receives one line per successful write.
func Register(r gin.IRouter, h Handlers, auth *service.AuthService, audit *zap.Logger) {
	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	public := r.Group("/auth")
	public.POST("/login", h.Auth.Login)
	public.POST("/register", h.Auth.Register)
	public.POST("/logout", h.Auth.Logout)
	public.POST("/refresh", h.Auth.Refresh)
	public.GET("/session", h.Auth.Session)

	api := r.Group("")
	api.Use(middleware.RequireSession(auth), middleware.WithResponseMeta())

	profile := api.Group("/auth")
	profile.GET("/profile", h.Auth.Profile)
	profile.PUT("/profile", middleware.Audit(audit, "update", "profile"), h.Auth.UpdateProfile)
	profile.POST("/avatar", middleware.Audit(audit, "upload", "avatar"), h.Auth.UploadAvatar)
	profile.POST("/change-password", middleware.Audit(audit, "change_password", "profile"), h.Auth.ChangePassword)

	api.GET("/dashboard", h.Dashboard.Mine)
	dash := api.Group("/dashboard")
	dash.GET("/admin", admin, h.Dashboard.Admin)
	dash.GET("/teacher", middleware.RequireRoles(models.RoleTeacher), h.Dashboard.Teacher)
	dash.GET("/student", middleware.RequireRoles(models.RoleStudent), h.Dashboard.Student)
	dash.GET("/parent", middleware.RequireRoles(models.RoleParent), h.Dashboard.Parent)

	users := api.Group("/users")
	users.GET("", admin, h.Users.List)
	users.GET("/search", admin, h.Users.Search)
	users.POST("/search/keystroke", admin, h.Users.Keystroke)
	users.GET("/search/latest", admin, h.Users.Latest)
	users.GET("/stats", admin, h.Users.Stats)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.Users.Get)
	users.POST("", admin, middleware.Audit(audit, "create", "user"), h.Users.Create)
	users.POST("/import", admin, middleware.Audit(audit, "import", "user"), h.Users.Import)
	users.PUT("/:id", admin, middleware.Audit(audit, "update", "user"), h.Users.Update)
	users.POST("/:id/activate", admin, middleware.Audit(audit, "activate", "user"), h.Users.Activate)
	users.POST("/:id/deactivate", admin, middleware.Audit(audit, "deactivate", "user"), h.Users.Deactivate)

	students := api.Group("/students")
	students.GET("", staff, h.Students.List)
	students.GET("/mine", middleware.RequireRoles(models.RoleParent), h.Students.Children)
	students.GET("/:id", staff, h.Students.Get)
	students.POST("", admin, middleware.Audit(audit, "create", "student"), h.Students.Create)
	students.PUT("/:id", admin, middleware.Audit(audit, "update", "student"), h.Students.Update)

	teachers := api.Group("/teachers", admin)
	teachers.GET("", h.Teachers.List)
	teachers.GET("/:id", h.Teachers.Get)
	teachers.POST("", middleware.Audit(audit, "create", "teacher"), h.Teachers.Create)
	teachers.PUT("/:id", middleware.Audit(audit, "update", "teacher"), h.Teachers.Update)

	fees := api.Group("/fees")
	fees.GET("", admin, h.Fees.List)
	fees.GET("/summary", admin, h.Fees.Summary)
	fees.GET("/student/:studentId", h.Fees.ByStudent)
	fees.GET("/:id", h.Fees.Get)
	fees.GET("/:id/payments", h.Fees.Payments)
	fees.POST("", admin, middleware.Audit(audit, "create", "fee"), h.Fees.Create)
	fees.PUT("/:id", admin, middleware.Audit(audit, "update", "fee"), h.Fees.Update)
	fees.DELETE("/:id", admin, middleware.Audit(audit, "delete", "fee"), h.Fees.Delete)
	fees.POST("/:id/pay", middleware.Audit(audit, "pay", "fee"), h.Fees.Pay)

	library := api.Group("/library")
	library.GET("/books", h.Library.Books)
	library.GET("/books/:id", h.Library.Book)
	library.POST("/books", admin, middleware.Audit(audit, "create", "book"), h.Library.CreateBook)
	library.PUT("/books/:id", admin, middleware.Audit(audit, "update", "book"), h.Library.UpdateBook)
	library.DELETE("/books/:id", admin, middleware.Audit(audit, "delete", "book"), h.Library.DeleteBook)
	library.GET("/borrows", staff, h.Library.Borrows)
	library.GET("/borrows/overdue", staff, h.Library.Overdue)
	library.POST("/borrows", staff, middleware.Audit(audit, "borrow", "book"), h.Library.Borrow)
	library.POST("/borrows/:id/return", staff, middleware.Audit(audit, "return", "borrow"), h.Library.Return)
	library.POST("/borrows/:id/renew", staff, middleware.Audit(audit, "renew", "borrow"), h.Library.Renew)

	assignments := api.Group("/assignments")
	assignments.GET("", h.Assignments.List)
	assignments.GET("/submissions/mine", middleware.RequireRoles(models.RoleStudent), h.Assignments.MySubmissions)
	assignments.POST("/submissions/:id/grade", staff, middleware.Audit(audit, "grade", "submission"), h.Assignments.Grade)
	assignments.GET("/:id", h.Assignments.Get)
	assignments.GET("/:id/submissions", staff, h.Assignments.Submissions)
	assignments.POST("", staff, middleware.Audit(audit, "create", "assignment"), h.Assignments.Create)
	assignments.PUT("/:id", staff, middleware.Audit(audit, "update", "assignment"), h.Assignments.Update)
	assignments.DELETE("/:id", staff, middleware.Audit(audit, "delete", "assignment"), h.Assignments.Delete)
	assignments.POST("/:id/submit", middleware.RequireRoles(models.RoleStudent), h.Assignments.Submit)

	notices := api.Group("/notices")
	notices.GET("", h.Communication.Notices)
	notices.GET("/visible", h.Communication.VisibleNotices)
	notices.GET("/:id", h.Communication.Notice)
	notices.POST("", admin, middleware.Audit(audit, "create", "notice"), h.Communication.CreateNotice)
	notices.PUT("/:id", admin, middleware.Audit(audit, "update", "notice"), h.Communication.UpdateNotice)
	notices.DELETE("/:id", admin, middleware.Audit(audit, "delete", "notice"), h.Communication.DeleteNotice)

	messages := api.Group("/messages")
	messages.GET("/inbox", h.Communication.Inbox)
	messages.GET("/sent", h.Communication.Sent)
	messages.GET("/unread-count", h.Communication.Unread)
	messages.GET("/:id", h.Communication.Message)
	messages.POST("", h.Communication.Send)
	messages.POST("/:id/reply", h.Communication.Reply)
	messages.POST("/:id/read", h.Communication.MarkRead)
	messages.DELETE("/:id", h.Communication.DeleteMessage)

	roles := api.Group("/roles", admin)
	roles.GET("", h.Admin.Roles)
	roles.GET("/permissions", h.Admin.Permissions)
	roles.GET("/:id", h.Admin.Role)
	roles.POST("", middleware.Audit(audit, "create", "role"), h.Admin.CreateRole)
	roles.PUT("/:id", middleware.Audit(audit, "update", "role"), h.Admin.UpdateRole)
	roles.PUT("/:id/permissions", middleware.Audit(audit, "replace_permissions", "role"), h.Admin.ReplacePermissions)
	roles.DELETE("/:id", middleware.Audit(audit, "delete", "role"), h.Admin.DeleteRole)

	settings := api.Group("/settings", admin)
	settings.GET("", h.Admin.Settings)
	settings.PATCH("", middleware.Audit(audit, "update", "settings"), h.Admin.UpdateSettings)
	settings.GET("/metrics", h.Metrics.Snapshot)
	settings.GET("/backups", h.Admin.Backups)
	settings.POST("/backups", middleware.Audit(audit, "create", "backup"), h.Admin.CreateBackup)
	settings.POST("/backups/:id/download", middleware.Audit(audit, "download", "backup"), h.Admin.DownloadBackup)
	settings.POST("/restore", middleware.Audit(audit, "restore", "backup"), h.Admin.Restore)
}
