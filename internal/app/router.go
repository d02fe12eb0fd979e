package app

import (
	"inr99_academy_backend/docs"
	"inr99_academy_backend/internal/config"
	"inr99_academy_backend/internal/middleware"
	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, cfg)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c, repos)
		a.registerInstructorRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/plans", c.subscription.ListPlans)

		// Catalog browsing is open to guests; a logged-in caller gets their
		// enrollment folded into the outline.
		catalog := public.Group("", middleware.TryAuthMiddleware(cfg))
		catalog.GET("/courses", c.course.ListCourses)
		catalog.GET("/courses/:id", c.course.GetOutline)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers, repos *repositories) {
	rg.GET("/me", c.auth.Me)
	rg.PUT("/me", c.user.UpdateProfile)
	rg.GET("/dashboard", c.dashboard.StudentDashboard)

	rg.POST("/courses/:id/enroll", c.course.Enroll)
	rg.GET("/enrollments", c.course.ListEnrollments)
	rg.GET("/badges", c.assessment.ListMyBadges)
	rg.GET("/certificates", c.certificate.ListMine)
	rg.POST("/courses/:id/certificate", c.certificate.Issue)

	rg.POST("/subscriptions", c.subscription.Subscribe)
	rg.GET("/subscriptions/current", c.subscription.Current)
	rg.POST("/subscriptions/cancel", c.subscription.Cancel)
	rg.GET("/payments/:orderId", c.subscription.PollPayment)

	// Lessons get their own gate so free preview lessons stay reachable
	// without a subscription.
	lessons := rg.Group("/lessons")
	lessons.Use(middleware.LessonAccessMiddleware(a.services.subscription, repos.course))
	{
		lessons.POST("/:id/complete", c.course.CompleteLesson)
		lessons.GET("/:id/playback", c.media.GetPlayback)
	}

	// Everything else premium sits behind the subscription gate.
	premium := rg.Group("/")
	premium.Use(middleware.SubscriptionMiddleware(a.services.subscription))
	{
		premium.GET("/assessments/:id", c.assessment.GetAssessment)
		premium.POST("/assessments/:id/submissions", c.assessment.Submit)
		premium.GET("/assessments/:id/attempts", c.assessment.ListAttempts)

		premium.GET("/live-sessions", c.liveSession.ListUpcoming)
		premium.POST("/live-sessions/:id/join", c.liveSession.Join)
	}
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(model.Instructor))
	{
		instructor.GET("/dashboard", c.dashboard.InstructorDashboard)

		instructor.GET("/courses", c.course.ListMyCourses)
		instructor.POST("/courses", c.course.CreateCourse)
		instructor.PUT("/courses/:id", c.course.UpdateCourse)
		instructor.DELETE("/courses/:id", c.course.DeleteCourse)
		instructor.POST("/modules", c.course.CreateModule)
		instructor.POST("/lessons", c.course.CreateLesson)
		instructor.DELETE("/lessons/:id", c.course.DeleteLesson)
		instructor.POST("/lessons/:id/video", c.media.UploadLessonVideo)

		instructor.GET("/assessments", c.assessment.ListAssessments)
		instructor.POST("/assessments", c.assessment.CreateAssessment)
		instructor.PUT("/assessments/:id", c.assessment.UpdateAssessment)
		instructor.DELETE("/assessments/:id", c.assessment.DeleteAssessment)
		instructor.GET("/assessments/:id/questions", c.assessment.ListQuestions)
		instructor.GET("/assessments/:id/attempts", c.assessment.ListAssessmentAttempts)
		instructor.POST("/questions", c.assessment.CreateQuestion)
		instructor.PUT("/questions/:id", c.assessment.UpdateQuestion)
		instructor.DELETE("/questions/:id", c.assessment.DeleteQuestion)

		instructor.GET("/live-sessions", c.liveSession.ListMine)
		instructor.POST("/live-sessions", c.liveSession.Create)
		instructor.PUT("/live-sessions/:id", c.liveSession.Update)
		instructor.DELETE("/live-sessions/:id", c.liveSession.Delete)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/stats", c.dashboard.AdminStats)
		admin.GET("/users", c.user.ListUsers)
		admin.PUT("/users/:id/disabled", c.user.SetDisabled)
		admin.POST("/plans", c.subscription.CreatePlan)
		admin.PUT("/plans/:id", c.subscription.UpdatePlan)
	}
}
