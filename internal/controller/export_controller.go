package controller

import (
	"edu_translator_backend/internal/service"
	"edu_translator_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	service *service.ExportService
}

func NewExportController(s *service.ExportService) *ExportController {
	return &ExportController{service: s}
}

// SessionSummary 当前会话的学习记录 xlsx
// GET /api/export/summary
func (c *ExportController) SessionSummary(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	buf, name, err := c.service.SessionSummary(sess)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Attachment(ctx, name, util.MimeXLSX, buf.Bytes())
}

// Bundle 全部记录文件打包下载
// GET /api/teacher/export/bundle
func (c *ExportController) Bundle(ctx *gin.Context) {
	buf, name, err := c.service.Bundle()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Attachment(ctx, name, util.MimeZip, buf.Bytes())
}

// Archive 打包并上传到配置的存储
// POST /api/teacher/export/archive
func (c *ExportController) Archive(ctx *gin.Context) {
	result, err := c.service.Archive(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// DeleteArchive 删除已上传的打包文件
// DELETE /api/teacher/export/archive/:name
func (c *ExportController) DeleteArchive(ctx *gin.Context) {
	if err := c.service.DeleteArchive(ctx.Request.Context(), ctx.Param("name")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": ctx.Param("name")})
}
