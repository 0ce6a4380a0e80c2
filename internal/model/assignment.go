package model

import (
	"strings"
	"time"
)

type AssignmentMode string

const (
	TranslateFirst AssignmentMode = "translate_first"
	PostEditMT     AssignmentMode = "post_edit_mt"
)

// ParseAssignmentMode 兼容旧记录里的界面文案（"Post-edit given MT ..." / "Translate first ..."）
func ParseAssignmentMode(s string) AssignmentMode {
	v := strings.TrimSpace(s)
	switch {
	case v == string(PostEditMT), strings.HasPrefix(strings.ToLower(v), "post-edit"):
		return PostEditMT
	default:
		return TranslateFirst
	}
}

// Assignment 教师布置的翻译/译后编辑练习
type Assignment struct {
	Code         string         `json:"code"`
	Title        string         `json:"title"`
	Group        string         `json:"group"`
	SourceText   string         `json:"sourceText"`
	Mode         AssignmentMode `json:"mode"`
	MachineDraft string         `json:"machineDraft,omitempty"`
	SourceLang   Language       `json:"sourceLang"`
	TargetLang   Language       `json:"targetLang"`
	Domain       string         `json:"domain"`
	Tone         string         `json:"tone"`
	Deadline     string         `json:"deadline"`
	Creator      string         `json:"creator"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (a *Assignment) IsPostEdit() bool {
	return a.Mode == PostEditMT
}

func (a *Assignment) ToRow() Row {
	return Row{
		"timestamp":   FormatTimestamp(a.CreatedAt),
		"code":        a.Code,
		"title":       a.Title,
		"mode":        string(a.Mode),
		"source_lang": string(a.SourceLang),
		"target_lang": string(a.TargetLang),
		"domain":      a.Domain,
		"tone":        a.Tone,
		"deadline":    a.Deadline,
		"text":        a.SourceText,
		"mt_draft":    a.MachineDraft,
		"instructor":  a.Creator,
		"group":       a.Group,
	}
}

// AssignmentFromRow 旧记录可能缺少后加的列，这里统一补默认值
func AssignmentFromRow(r Row) Assignment {
	return Assignment{
		Code:         r["code"],
		Title:        r["title"],
		Group:        r["group"],
		SourceText:   r["text"],
		Mode:         ParseAssignmentMode(r["mode"]),
		MachineDraft: r["mt_draft"],
		SourceLang:   ParseLanguage(r["source_lang"], English),
		TargetLang:   ParseLanguage(r["target_lang"], Arabic),
		Domain:       r["domain"],
		Tone:         r["tone"],
		Deadline:     r["deadline"],
		Creator:      r["instructor"],
		CreatedAt:    ParseTimestamp(r["timestamp"]),
	}
}

// ForStudent 学生列表中不含机器译稿
func (a Assignment) ForStudent() Assignment {
	a.MachineDraft = ""
	return a
}
