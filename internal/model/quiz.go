package model

import "strings"

const (
	QuizItemMCQ  = "mcq"
	QuizItemFITB = "fitb"
)

type QuizItem struct {
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
	Explain  string   `json:"explain"`
}

// QuizState 会话内的小测状态，每题最多计一次分
type QuizState struct {
	Target  string     `json:"target"`
	Items   []QuizItem `json:"items"`
	Checked []bool     `json:"checked"`
	Score   int        `json:"score"`
	Total   int        `json:"total"`
}

func NewQuizState(target string, items []QuizItem) *QuizState {
	return &QuizState{
		Target:  target,
		Items:   items,
		Checked: make([]bool, len(items)),
		Total:   len(items),
	}
}

// IsCorrect 选择题可答选项文本或选项字母，填空题忽略大小写与首尾空白
func (q QuizItem) IsCorrect(answer string) bool {
	given := strings.TrimSpace(answer)
	want := strings.TrimSpace(q.Answer)
	if given == "" {
		return false
	}
	if q.Type != QuizItemMCQ {
		return strings.EqualFold(given, want)
	}
	if given == want {
		return true
	}
	return q.resolveOption(given) == q.resolveOption(want)
}

// resolveOption 把 "B" 这样的字母映射到对应选项文本
func (q QuizItem) resolveOption(v string) string {
	if len(v) == 1 {
		idx := int(strings.ToUpper(v)[0]) - 'A'
		if idx >= 0 && idx < len(q.Options) {
			return strings.TrimSpace(q.Options[idx])
		}
	}
	return v
}

// View 未检查的题目不返回答案与解析
func (q *QuizState) View() *QuizState {
	if q == nil {
		return nil
	}
	v := *q
	v.Items = make([]QuizItem, len(q.Items))
	for i, it := range q.Items {
		if i >= len(q.Checked) || !q.Checked[i] {
			it.Answer = ""
			it.Explain = ""
		}
		v.Items[i] = it
	}
	return &v
}
