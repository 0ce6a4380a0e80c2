package app

import (
	"edu_translator_backend/internal/middleware"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/service"
	"edu_translator_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/session", middleware.AccessWindowMiddleware(a.services.access), c.session.Unlock)
	}

	// 2. 需要会话的路由，开放时段之外一律拒绝
	authGroup := router.Group("/api")
	authGroup.Use(
		middleware.AccessWindowMiddleware(a.services.access),
		middleware.AuthMiddleware(a.services.access, a.services.session),
	)
	{
		a.registerStudentRoutes(authGroup, c)

		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Instructor))
		a.registerTeacherRoutes(teacher, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/session", c.session.Get)
	rg.PUT("/session", c.session.Update)
	rg.DELETE("/session", c.session.End)

	// 翻译工具
	rg.POST("/translate", c.tutor.Translate)
	rg.POST("/translate/back", c.tutor.BackTranslate)
	rg.POST("/translate/errors", c.tutor.DetectErrors)
	rg.POST("/explain", c.tutor.Explain)
	rg.GET("/explain/stream", c.tutor.ExplainStream)
	rg.POST("/collocations", c.tutor.Collocations)
	rg.POST("/challenges", c.tutor.Challenge)

	// 小测
	rg.GET("/quiz", c.quiz.Current)
	rg.POST("/quiz", c.quiz.Generate)
	rg.POST("/quiz/items/:index/check", c.quiz.Check)

	// 学习日志
	rg.POST("/reflections", c.learningLog.SaveReflection)
	rg.POST("/glossary", c.learningLog.SaveGlossary)

	// 作业
	rg.GET("/assignments", c.assignment.List)
	rg.GET("/assignments/default", c.assignment.Default)

	workflow := rg.Group("/workflow")
	{
		workflow.GET("", c.workflow.Current)
		workflow.POST("/open", c.workflow.Open)
		workflow.PUT("/draft", c.workflow.UpdateDraft)
		workflow.POST("/machine-draft", c.workflow.MachineDraft)
		workflow.PUT("/final", c.workflow.UpdateFinal)
		workflow.POST("/analyze", c.workflow.Analyze)
		workflow.POST("/submit", c.workflow.Submit)
	}

	rg.GET("/export/summary", c.export.SessionSummary)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/assignments", c.assignment.Create)
	rg.GET("/assignments/recent", c.assignment.Recent)

	rg.GET("/dashboard", c.dashboard.GetDashboard)
	rg.GET("/submissions", c.dashboard.ListSubmissions)
	rg.GET("/submissions/download", c.dashboard.DownloadSubmissions)

	rg.GET("/export/bundle", c.export.Bundle)
	rg.POST("/export/archive", c.export.Archive)
	rg.DELETE("/export/archive/:name", c.export.DeleteArchive)

	// 本地存储的归档只对教师开放
	if local, ok := a.services.storage.Provider.(*service.LocalStorageProvider); ok {
		rg.Static("/archives", local.Root)
	}
}
