package controller

import (
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/service"
	"edu_translator_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// WorkflowController 学生作业流程；所有修改都在会话锁内完成
type WorkflowController struct {
	workflow *service.WorkflowService
	sessions *service.SessionService
}

func NewWorkflowController(workflow *service.WorkflowService, sessions *service.SessionService) *WorkflowController {
	return &WorkflowController{workflow: workflow, sessions: sessions}
}

type openWorkflowRequest struct {
	Code string `json:"code"`
}

type submitRequest struct {
	Reflection string `json:"reflection"`
}

// update 在会话锁内执行 fn
func (c *WorkflowController) update(ctx *gin.Context, fn func(sess *model.Session) error) bool {
	sess := currentSession(ctx)
	if sess == nil {
		return false
	}
	if _, err := c.sessions.Update(ctx.Request.Context(), sess.ID, fn); err != nil {
		respondError(ctx, err)
		return false
	}
	return true
}

// GET /api/workflow
func (c *WorkflowController) Current(ctx *gin.Context) {
	sess := currentSession(ctx)
	if sess == nil {
		return
	}
	wf, err := c.workflow.Current(sess)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, wf.View())
}

// Open 打开作业；code 为空时打开组内最新一份
// POST /api/workflow/open
func (c *WorkflowController) Open(ctx *gin.Context) {
	var req openWorkflowRequest
	if !bindJSON(ctx, &req) {
		return
	}

	var wf *model.Workflow
	ok := c.update(ctx, func(s *model.Session) error {
		var err error
		wf, err = c.workflow.Open(s, req.Code)
		return err
	})
	if ok {
		util.Success(ctx, wf.View())
	}
}

// PUT /api/workflow/draft
func (c *WorkflowController) UpdateDraft(ctx *gin.Context) {
	var req textRequest
	if !bindJSON(ctx, &req) {
		return
	}

	var wf *model.Workflow
	ok := c.update(ctx, func(s *model.Session) error {
		var err error
		wf, err = c.workflow.UpdateDraft(s, req.Text)
		return err
	})
	if ok {
		util.Success(ctx, wf.View())
	}
}

// MachineDraft 译后编辑模式下取机器译稿
// POST /api/workflow/machine-draft
func (c *WorkflowController) MachineDraft(ctx *gin.Context) {
	var draft string
	ok := c.update(ctx, func(s *model.Session) error {
		var err error
		draft, err = c.workflow.MachineDraft(ctx.Request.Context(), s)
		return err
	})
	if ok {
		util.Success(ctx, gin.H{"machineDraft": draft, "degraded": service.IsPlaceholder(draft)})
	}
}

// PUT /api/workflow/final
func (c *WorkflowController) UpdateFinal(ctx *gin.Context) {
	var req textRequest
	if !bindJSON(ctx, &req) {
		return
	}

	var wf *model.Workflow
	ok := c.update(ctx, func(s *model.Session) error {
		var err error
		wf, err = c.workflow.UpdateFinal(s, req.Text)
		return err
	})
	if ok {
		util.Success(ctx, wf.View())
	}
}

// Analyze 错误分析，可重复调用
// POST /api/workflow/analyze
func (c *WorkflowController) Analyze(ctx *gin.Context) {
	var fb *model.Feedback
	ok := c.update(ctx, func(s *model.Session) error {
		var err error
		fb, err = c.workflow.Analyze(ctx.Request.Context(), s)
		return err
	})
	if ok {
		util.Success(ctx, fb)
	}
}

// Submit 提交作业，写入一条提交记录
// POST /api/workflow/submit
func (c *WorkflowController) Submit(ctx *gin.Context) {
	var req submitRequest
	if !bindJSON(ctx, &req) {
		return
	}

	var sub *model.Submission
	ok := c.update(ctx, func(s *model.Session) error {
		var err error
		sub, err = c.workflow.Submit(ctx.Request.Context(), s, req.Reflection)
		return err
	})
	if ok {
		util.Created(ctx, sub)
	}
}
