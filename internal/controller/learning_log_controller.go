package controller

import (
	"edu_translator_backend/internal/service"
	"edu_translator_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningLogController struct {
	service *service.LearningLogService
}

func NewLearningLogController(s *service.LearningLogService) *LearningLogController {
	return &LearningLogController{service: s}
}

// SaveReflection 保存一次翻译反思
// POST /api/reflections
func (c *LearningLogController) SaveReflection(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	var req service.SaveReflectionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	r, err := c.service.SaveReflection(sess, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, r)
}

// SaveGlossary 加入个人词汇表
// POST /api/glossary
func (c *LearningLogController) SaveGlossary(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	var req service.SaveGlossaryRequest
	if !bindJSON(ctx, &req) {
		return
	}

	e, err := c.service.SaveGlossary(sess, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, e)
}
