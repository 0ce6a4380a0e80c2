package controller

import (
	"edu_translator_backend/internal/service"
	"edu_translator_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

const recentAssignmentsDefault = 20

type AssignmentController struct {
	service *service.AssignmentService
}

func NewAssignmentController(s *service.AssignmentService) *AssignmentController {
	return &AssignmentController{service: s}
}

// List 当前组号可见的作业，按创建时间升序
// GET /api/assignments
func (c *AssignmentController) List(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	list, err := c.service.ListFor(sess.Group)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !sess.IsInstructor() {
		for i := range list {
			list[i] = list[i].ForStudent()
		}
	}
	util.Success(ctx, list)
}

// Default 最新一份作业，没有时 data 为空
// GET /api/assignments/default
func (c *AssignmentController) Default(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	a, err := c.service.Default(sess.Group)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if a != nil && !sess.IsInstructor() {
		view := a.ForStudent()
		a = &view
	}
	util.Success(ctx, a)
}

// Create 教师发布作业，组号取自教师会话
// POST /api/teacher/assignments
func (c *AssignmentController) Create(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	var req service.CreateAssignmentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.service.Create(ctx.Request.Context(), sess, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// GET /api/teacher/assignments/recent?limit=20
func (c *AssignmentController) Recent(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(recentAssignmentsDefault)))
	if err != nil || limit <= 0 {
		limit = recentAssignmentsDefault
	}
	list, err := c.service.Recent(limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
