package service

import (
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/repository"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/logger"
	"edu_translator_backend/pkg/tracing"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// WorkflowService 学生完成作业的流程：
// viewing → drafting → (post_editing) → reviewing → submitted
// 状态保存在会话中，调用方负责在 SessionService.Update 内调用
type WorkflowService struct {
	assignments *AssignmentService
	submissions *repository.SubmissionRepository
	feedback    *FeedbackService
	now         func() time.Time
}

func NewWorkflowService(assignments *AssignmentService, submissions *repository.SubmissionRepository, feedback *FeedbackService) *WorkflowService {
	return &WorkflowService{
		assignments: assignments,
		submissions: submissions,
		feedback:    feedback,
		now:         time.Now,
	}
}

// active 返回可编辑的流程
func active(sess *model.Session) (*model.Workflow, error) {
	if sess.Workflow == nil {
		return nil, util.ErrNoWorkflow
	}
	if sess.Workflow.State == model.StateSubmitted {
		return nil, util.ErrWorkflowSubmitted
	}
	return sess.Workflow, nil
}

// Open 打开组内一份作业；code 为空时打开最新一份。会替换会话中原有的流程
func (s *WorkflowService) Open(sess *model.Session, code string) (*model.Workflow, error) {
	if strings.TrimSpace(sess.Group) == "" {
		return nil, util.ErrGroupRequired
	}

	var a *model.Assignment
	var err error
	if code == "" {
		a, err = s.assignments.Default(sess.Group)
		if err == nil && a == nil {
			err = util.ErrAssignmentNotFound
		}
	} else {
		a, err = s.assignments.Find(sess.Group, code)
	}
	if err != nil {
		return nil, err
	}

	sess.Workflow = model.NewWorkflow(*a, s.now())
	return sess.Workflow, nil
}

// Current 当前流程，已提交的也返回
func (s *WorkflowService) Current(sess *model.Session) (*model.Workflow, error) {
	if sess.Workflow == nil {
		return nil, util.ErrNoWorkflow
	}
	return sess.Workflow, nil
}

// UpdateDraft 写初稿；译后编辑模式下初稿非空即进入 post_editing
func (s *WorkflowService) UpdateDraft(sess *model.Session, text string) (*model.Workflow, error) {
	wf, err := active(sess)
	if err != nil {
		return nil, err
	}

	wf.FirstDraft = text
	if wf.State == model.StateViewing {
		wf.State = model.StateDrafting
	}
	if wf.State == model.StateDrafting && wf.Assignment.IsPostEdit() && strings.TrimSpace(text) != "" {
		wf.State = model.StatePostEditing
	}
	return wf, nil
}

// MachineDraft 返回机器译稿：优先用作业预生成的，其次用会话缓存，最后按需生成一次
func (s *WorkflowService) MachineDraft(ctx context.Context, sess *model.Session) (string, error) {
	wf, err := active(sess)
	if err != nil {
		return "", err
	}
	if !wf.Assignment.IsPostEdit() {
		return "", util.ErrNotPostEdit
	}
	if strings.TrimSpace(wf.FirstDraft) == "" {
		return "", util.ErrDraftRequired
	}

	if wf.Assignment.MachineDraft != "" {
		return wf.Assignment.MachineDraft, nil
	}
	if wf.MachineDraft != "" {
		return wf.MachineDraft, nil
	}

	a := wf.Assignment
	draft, ok := s.feedback.Translate(ctx, a.SourceText, a.SourceLang, a.TargetLang)
	if ok {
		wf.MachineDraft = draft
	}
	return draft, nil
}

// UpdateFinal 写终稿，进入 reviewing
func (s *WorkflowService) UpdateFinal(sess *model.Session, text string) (*model.Workflow, error) {
	wf, err := active(sess)
	if err != nil {
		return nil, err
	}
	wf.FinalText = text
	wf.State = model.StateReviewing
	return wf, nil
}

// Analyze 请求错误分析；不改变状态，可多次调用，每次覆盖上一次结果
func (s *WorkflowService) Analyze(ctx context.Context, sess *model.Session) (*model.Feedback, error) {
	wf, err := active(sess)
	if err != nil {
		return nil, err
	}

	text := wf.AnalysisText()
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrNothingToAnalyze
	}

	fb := s.feedback.Classify(ctx, wf.Assignment.SourceText, text, wf.Assignment.TargetLang)
	wf.Feedback = &fb
	tracing.Annotate(ctx,
		attribute.String("assignment.code", wf.Assignment.Code),
		attribute.Bool("feedback.degraded", fb.Degraded),
	)
	return &fb, nil
}

// Submit 写入一条提交记录。没有可用反馈时先同步生成；允许空终稿
func (s *WorkflowService) Submit(ctx context.Context, sess *model.Session, reflection string) (*model.Submission, error) {
	wf, err := active(sess)
	if err != nil {
		return nil, err
	}

	if !wf.HasFeedback() {
		if text := wf.AnalysisText(); strings.TrimSpace(text) != "" {
			fb := s.feedback.Classify(ctx, wf.Assignment.SourceText, text, wf.Assignment.TargetLang)
			wf.Feedback = &fb
		}
	}

	sub := &model.Submission{
		Code:       wf.Assignment.Code,
		Title:      wf.Assignment.Title,
		Student:    sess.Student,
		Group:      sess.Group,
		Session:    sess.ID,
		FirstDraft: wf.FirstDraft,
		FinalText:  wf.FinalText,
		Reflection: reflection,
		Timestamp:  s.now(),
	}
	if wf.Feedback != nil {
		sub.Feedback = wf.Feedback.Text
	}

	if strings.TrimSpace(sub.FinalText) == "" {
		logger.FromContext(ctx).Warn("submission with empty final text", zap.String("code", sub.Code), zap.String("session", sess.ID))
	}

	if err := s.submissions.Create(sub); err != nil {
		return nil, err
	}

	wf.State = model.StateSubmitted
	wf.Submission = sub
	tracing.Annotate(ctx,
		attribute.String("assignment.code", sub.Code),
		attribute.String("assignment.mode", string(wf.Assignment.Mode)),
		attribute.String("record.kind", string(model.KindSubmissions)),
	)
	logger.FromContext(ctx).Info("assignment submitted",
		zap.String("code", sub.Code),
		zap.String("group", sub.Group),
		zap.String("session", sess.ID),
	)
	return sub, nil
}
