package controller

import (
	"edu_translator_backend/internal/service"
	"edu_translator_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	access   *service.AccessService
	sessions *service.SessionService
}

func NewSessionController(access *service.AccessService, sessions *service.SessionService) *SessionController {
	return &SessionController{access: access, sessions: sessions}
}

// Unlock 输入班级口令进入，教师角色另需教师口令
// POST /api/session
func (c *SessionController) Unlock(ctx *gin.Context) {
	var req service.UnlockRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.access.Unlock(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// GET /api/session
func (c *SessionController) Get(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	util.Success(ctx, sess.View())
}

// Update 修改姓名、组号与语言设置
// PUT /api/session
func (c *SessionController) Update(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}

	var req service.SessionProfile
	if !bindJSON(ctx, &req) {
		return
	}

	updated, err := c.sessions.UpdateProfile(ctx.Request.Context(), sess.ID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, updated.View())
}

// DELETE /api/session
func (c *SessionController) End(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	if err := c.sessions.End(ctx.Request.Context(), sess.ID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
