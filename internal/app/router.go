package app

import (
	"worksheet_edu_backend/docs"
	"worksheet_edu_backend/internal/config"
	"worksheet_edu_backend/internal/middleware"
	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.Profile)
		authGroup.PUT("/profile", c.auth.UpdateProfile)

		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/classes", c.class.Create)
			teacher.GET("/classes", c.class.List)
			teacher.DELETE("/classes/:id", c.class.Delete)
			teacher.POST("/classes/:id/students", c.class.AddStudent)
			teacher.GET("/classes/:id/students", c.class.ListStudents)
			teacher.GET("/classes/:id/roster", c.class.Roster)

			teacher.POST("/diagnostics", c.diagnostic.Record)
			teacher.GET("/students/:studentId/diagnostics", c.diagnostic.History)

			worksheets := teacher.Group("/worksheets")
			{
				worksheets.POST("/generate", c.worksheet.Generate)
				worksheets.POST("/runs", c.worksheet.Prepare)
				worksheets.GET("/runs/:runId", c.worksheet.GetRun)
				worksheets.POST("/runs/:runId/regenerate-entry", c.worksheet.RegenerateEntry)
				worksheets.POST("/runs/:runId/regenerate-question", c.worksheet.RegenerateQuestion)
				worksheets.POST("/runs/:runId/render", c.worksheet.Render)
				worksheets.GET("/documents", c.worksheet.ListDocuments)

				worksheets.POST("/presets", c.preset.Save)
				worksheets.GET("/presets", c.preset.List)
				worksheets.DELETE("/presets/:name", c.preset.Delete)
			}
		}
	}
}
