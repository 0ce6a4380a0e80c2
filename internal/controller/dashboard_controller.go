package controller

import (
	"edu_translator_backend/internal/service"
	"edu_translator_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	service *service.DashboardService
}

func NewDashboardController(s *service.DashboardService) *DashboardController {
	return &DashboardController{service: s}
}

// GET /api/teacher/dashboard
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	stats, err := c.service.Stats()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// GET /api/teacher/submissions?code=...
func (c *DashboardController) ListSubmissions(ctx *gin.Context) {
	list, err := c.service.Submissions(ctx.Query("code"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// DownloadSubmissions 提交记录 CSV 原文件
// GET /api/teacher/submissions/download
func (c *DashboardController) DownloadSubmissions(ctx *gin.Context) {
	data, ok, err := c.service.SubmissionsCSV()
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !ok {
		util.NotFound(ctx, "no submissions yet")
		return
	}
	util.Attachment(ctx, "submissions.csv", util.MimeCSV, data)
}
