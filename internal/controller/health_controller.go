package controller

import (
	"edu_translator_backend/internal/util"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	recordsDir string
}

func NewHealthController(recordsDir string) *HealthController {
	return &HealthController{recordsDir: recordsDir}
}

// HealthCheck 检查记录目录是否可用
// GET /api/health
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	info, err := os.Stat(c.recordsDir)
	if err != nil || !info.IsDir() {
		util.Error(ctx, http.StatusServiceUnavailable, "Records directory unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"records": "up",
		},
	})
}
