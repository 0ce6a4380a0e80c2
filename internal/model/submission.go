package model

import "time"

// Submission 学生提交；Code/Title 为作业的冗余副本，不做外键校验
type Submission struct {
	Code       string    `json:"code"`
	Title      string    `json:"title"`
	Student    string    `json:"student"`
	Group      string    `json:"group"`
	Session    string    `json:"session"`
	FirstDraft string    `json:"firstDraft"`
	FinalText  string    `json:"finalText"`
	Feedback   string    `json:"feedback"`
	Reflection string    `json:"reflection"`
	Timestamp  time.Time `json:"timestamp"`
}

func (s *Submission) ToRow() Row {
	return Row{
		"timestamp":   FormatTimestamp(s.Timestamp),
		"code":        s.Code,
		"title":       s.Title,
		"student":     s.Student,
		"group":       s.Group,
		"session":     s.Session,
		"first_draft": s.FirstDraft,
		"final":       s.FinalText,
		"feedback":    s.Feedback,
		"reflection":  s.Reflection,
	}
}

func SubmissionFromRow(r Row) Submission {
	return Submission{
		Code:       r["code"],
		Title:      r["title"],
		Student:    r["student"],
		Group:      r["group"],
		Session:    r["session"],
		FirstDraft: r["first_draft"],
		FinalText:  r["final"],
		Feedback:   r["feedback"],
		Reflection: r["reflection"],
		Timestamp:  ParseTimestamp(r["timestamp"]),
	}
}
