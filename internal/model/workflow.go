package model

import "time"

type WorkflowState string

const (
	StateViewing     WorkflowState = "viewing"
	StateDrafting    WorkflowState = "drafting"
	StatePostEditing WorkflowState = "post_editing"
	StateReviewing   WorkflowState = "reviewing"
	StateSubmitted   WorkflowState = "submitted"
)

// Feedback 一次分析的结果；Degraded 为 true 时 Text 是占位提示
type Feedback struct {
	Text        string       `json:"text"`
	Report      *ErrorReport `json:"report,omitempty"`
	Warning     string       `json:"warning,omitempty"`
	Degraded    bool         `json:"degraded"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Workflow 学生完成一次作业的表单状态，保存在会话中
type Workflow struct {
	Assignment   Assignment    `json:"assignment"`
	State        WorkflowState `json:"state"`
	FirstDraft   string        `json:"firstDraft"`
	MachineDraft string        `json:"machineDraft,omitempty"`
	FinalText    string        `json:"finalText"`
	Feedback     *Feedback     `json:"feedback,omitempty"`
	Submission   *Submission   `json:"submission,omitempty"`
	OpenedAt     time.Time     `json:"openedAt"`
}

func NewWorkflow(a Assignment, now time.Time) *Workflow {
	return &Workflow{
		Assignment: a,
		State:      StateViewing,
		OpenedAt:   now,
	}
}

// HasFeedback 只有成功生成的反馈才算数，占位结果在提交时会重试
func (w *Workflow) HasFeedback() bool {
	return w.Feedback != nil && !w.Feedback.Degraded
}

// AnalysisText 优先分析终稿，没有终稿时分析初稿
func (w *Workflow) AnalysisText() string {
	if w.FinalText != "" {
		return w.FinalText
	}
	return w.FirstDraft
}

// View 返回给学生的副本：写出初稿之前不暴露预生成的机器译稿
func (w *Workflow) View() *Workflow {
	if w == nil {
		return nil
	}
	v := *w
	if v.FirstDraft == "" || !v.Assignment.IsPostEdit() {
		v.Assignment.MachineDraft = ""
	}
	return &v
}
