package router

import (
	"net/http"
	"time"

	"showroom/config"
	"showroom/internal/domain"
	"showroom/internal/handler"
	"showroom/internal/handler/respond"
	"showroom/internal/middleware"
	"showroom/internal/observability"
	"showroom/internal/repository"
	"showroom/internal/service"
	"showroom/internal/ws"
	"showroom/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services, handlers, and routes. Route names
// follow the API the web client consumes: PascalCase resource groups
// plus the two socket endpoints.
func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.HTTPMetrics())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	chatRepo := repository.NewChatRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	syllabusRepo := repository.NewSyllabusRepository(db)
	academicRepo := repository.NewAcademicRepository(db)

	hub := ws.NewHub()
	chatHub := ws.NewChatHub()

	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, hub)

	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	userHandler := handler.NewUserHandler(userRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	groupHandler := handler.NewGroupHandler(groupRepo, userRepo, academicRepo, notifSvc)
	projectHandler := handler.NewProjectHandler(projectRepo, groupRepo, notifSvc)
	simulationHandler := handler.NewSimulationHandler(projectRepo, cloud)
	syllabusHandler := handler.NewSyllabusHandler(syllabusRepo, academicRepo, notifSvc, cloud)
	academicHandler := handler.NewAcademicHandler(academicRepo, userRepo)
	chatHandler := handler.NewChatHandler(chatRepo, groupRepo, academicRepo)
	uploadHandler := handler.NewUploadHandler(groupRepo, cloud)

	authMw := middleware.AuthRequired(&cfg.JWT)
	staffMw := middleware.RequireRole(domain.RoleInstructor, domain.RoleAdmin)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	authGroup := r.Group("/Authentication")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authMw, authHandler.Logout)
		authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		authGroup.GET("/google", googleOAuthHandler.Redirect)
		authGroup.GET("/google/callback", googleOAuthHandler.Callback)
		authGroup.POST("/google/token", googleOAuthHandler.Token)
	}
	r.POST("/refresh-token", authHandler.Refresh)

	userGroup := r.Group("/User", authMw)
	{
		userGroup.GET("/me", userHandler.Me)
		userGroup.PUT("/me", userHandler.UpdateMe)
		userGroup.GET("", adminMw, userHandler.List)
		userGroup.POST("", adminMw, userHandler.Create)
		userGroup.PATCH("/:id/active", adminMw, userHandler.SetActive)
		userGroup.DELETE("/:id", adminMw, userHandler.Delete)
	}

	notifGroup := r.Group("/Notifications", authMw)
	{
		notifGroup.GET("", notificationHandler.List)
		notifGroup.PUT("/read-all", notificationHandler.MarkAllRead)
		notifGroup.PUT("/:id/read", notificationHandler.MarkRead)
		notifGroup.DELETE("/read", notificationHandler.DeleteAllRead)
		notifGroup.DELETE("/:id", notificationHandler.Delete)
	}

	projectGroup := r.Group("/Project", authMw)
	{
		projectGroup.POST("", projectHandler.Create)
		projectGroup.GET("", projectHandler.List)
		projectGroup.GET("/:id", projectHandler.Get)
		projectGroup.PUT("/:id", projectHandler.Update)
		projectGroup.POST("/:id/submit", projectHandler.Submit)
		projectGroup.POST("/:id/grade", staffMw, projectHandler.Grade)
		projectGroup.DELETE("/:id", projectHandler.Delete)
	}

	simGroup := r.Group("/Simulation", authMw)
	{
		simGroup.GET("", simulationHandler.List)
		simGroup.POST("", simulationHandler.Create)
		simGroup.PUT("/:id", simulationHandler.Update)
		simGroup.DELETE("/:id", simulationHandler.Delete)
	}

	syllabusGroup := r.Group("/Syllabus", authMw)
	{
		syllabusGroup.GET("", syllabusHandler.ListByClass)
		syllabusGroup.POST("", staffMw, syllabusHandler.Create)
		syllabusGroup.POST("/upload", staffMw, syllabusHandler.UploadFile)
		syllabusGroup.DELETE("/files/:fileId", staffMw, syllabusHandler.DeleteFile)
		syllabusGroup.GET("/:id", syllabusHandler.Get)
		syllabusGroup.PUT("/:id", staffMw, syllabusHandler.Update)
		syllabusGroup.DELETE("/:id", staffMw, syllabusHandler.Delete)
	}

	groupGroup := r.Group("/Group", authMw)
	{
		groupGroup.POST("", groupHandler.Create)
		groupGroup.GET("", groupHandler.ListByClass)
		groupGroup.GET("/mine", groupHandler.Mine)
		groupGroup.GET("/:id", groupHandler.Get)
		groupGroup.POST("/:id/invite", groupHandler.Invite)
		groupGroup.DELETE("/:id/members/:userId", groupHandler.RemoveMember)
		groupGroup.DELETE("/:id", groupHandler.Delete)
	}

	semesterGroup := r.Group("/Semester", authMw)
	{
		semesterGroup.GET("", academicHandler.ListSemesters)
		semesterGroup.POST("", adminMw, academicHandler.CreateSemester)
		semesterGroup.PUT("/:id", adminMw, academicHandler.UpdateSemester)
		semesterGroup.DELETE("/:id", adminMw, academicHandler.DeleteSemester)
	}

	classGroup := r.Group("/Class", authMw)
	{
		classGroup.GET("", academicHandler.ListClasses)
		classGroup.GET("/:id", academicHandler.GetClass)
		classGroup.POST("", adminMw, academicHandler.CreateClass)
		classGroup.PUT("/:id", adminMw, academicHandler.UpdateClass)
		classGroup.DELETE("/:id", adminMw, academicHandler.DeleteClass)
		classGroup.POST("/:id/enroll", staffMw, academicHandler.Enroll)
		classGroup.DELETE("/:id/enroll/:studentId", staffMw, academicHandler.Unenroll)
		classGroup.GET("/:id/enrollments", staffMw, academicHandler.ListEnrollments)
	}

	chatGroup := r.Group("/Chat", authMw)
	{
		chatGroup.GET("/rooms", chatHandler.Rooms)
		chatGroup.GET("/rooms/:roomId/messages", chatHandler.Messages)
	}
	r.POST("/Upload/chat", authMw, uploadHandler.ChatFile)

	r.GET("/notificationHub", handler.UpgradeNotificationWS(&cfg.JWT, hub))
	r.GET("/ws/chat", handler.UpgradeChatWS(&cfg.JWT, chatHub, chatRepo, groupRepo, userRepo))

	r.GET("/metrics", observability.MetricsHandler())
	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
