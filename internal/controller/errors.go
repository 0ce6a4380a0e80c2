package controller

import (
	"edu_translator_backend/internal/middleware"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/security"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	badRequestErrors = []error{
		util.ErrGroupRequired,
		util.ErrAssignmentInvalid,
		util.ErrNotPostEdit,
		util.ErrDraftRequired,
		util.ErrNothingToAnalyze,
		util.ErrEmptyText,
		util.ErrQuizItemOutOfRange,
		util.ErrUnknownColumn,
		util.ErrUnknownRecordKind,
		util.ErrArchiveNameInvalid,
	}
	forbiddenErrors = []error{
		util.ErrPermissionDenied,
		util.ErrInstructorLocked,
		util.ErrAppClosed,
	}
	notFoundErrors = []error{
		util.ErrAssignmentNotFound,
		util.ErrNoWorkflow,
		util.ErrNoQuiz,
		util.ErrArchiveNotFound,
	}
)

func matches(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError 业务错误映射为 4xx，其余记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	switch {
	case matches(err, badRequestErrors):
		util.BadRequest(ctx, err.Error())
	case matches(err, forbiddenErrors):
		util.Forbidden(ctx, err.Error())
	case matches(err, notFoundErrors):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrWorkflowSubmitted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrWrongPassword), errors.Is(err, util.ErrSessionNotFound):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrStorageNotConfigured):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// currentSession 取出会话，不存在时已写入 401
func currentSession(ctx *gin.Context) *model.Session {
	sess := middleware.CurrentSession(ctx)
	if sess == nil {
		util.Unauthorized(ctx)
	}
	return sess
}

// bindJSON 解析请求体，失败时已写入响应
func bindJSON(ctx *gin.Context, v interface{}) bool {
	if err := ctx.ShouldBindJSON(v); err != nil {
		if security.IsBodyTooLarge(err) {
			util.Error(ctx, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return false
	}
	return true
}
