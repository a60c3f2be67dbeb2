package app

import (
	"edu_portal_backend/docs"
	"edu_portal_backend/internal/config"
	"edu_portal_backend/internal/middleware"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.Use(middleware.ConfigMiddleware(cfg))

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(api, c)

	// 2. 需要授权的路由
	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware(a.services.sessions))
	{
		a.registerStudentRoutes(authGroup, c)

		// 教师相关接口
		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/tests", c.content.CreateTest)
			teacher.POST("/materials", c.content.UploadMaterial)
		}
	}
}

func (a *App) registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)
	api.POST("/auth/register", c.auth.Register)
	api.POST("/auth/login", c.auth.Login)
}

func (a *App) registerStudentRoutes(auth *gin.RouterGroup, c *controllers) {
	auth.POST("/auth/logout", c.auth.Logout)
	auth.GET("/session", c.auth.Session)

	auth.GET("/profile", c.profile.GetProfile)
	auth.PUT("/profile", c.profile.UpdateProfile)

	auth.GET("/courses", c.course.ListCourses)
	auth.GET("/courses/by-name/:name", c.course.GetCourseByName)
	auth.GET("/courses/:id", c.course.GetCourse)
	auth.GET("/materials/:name/url", c.course.MaterialURL)

	auth.GET("/tests", c.content.ListTests)
	auth.GET("/results", c.content.Results)

	quiz := auth.Group("/quiz")
	{
		quiz.GET("/kinds", c.quiz.Kinds)
		quiz.POST("/runs", c.quiz.Start)
		quiz.GET("/run", c.quiz.Current)
		quiz.DELETE("/run", c.quiz.Close)
		quiz.POST("/run/answer", c.quiz.Answer)
		quiz.POST("/run/next", c.quiz.Next)
		quiz.POST("/run/prev", c.quiz.Prev)
		quiz.GET("/run/ws", c.quiz.Stream)
	}
}
