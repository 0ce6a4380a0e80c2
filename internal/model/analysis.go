package model

// 错误分类，仅作为提示词中的类别名，不在本地做分类
const (
	ErrorLexicalChoice = "LEXICAL CHOICE"
	ErrorGrammarSyntax = "GRAMMAR/SYNTAX"
	ErrorIdiomaticity  = "IDIOMATICITY"
	ErrorCollocation   = "COLLOCATION"
	ErrorStyleRegister = "STYLE/REGISTER"
	ErrorPunctuation   = "PUNCTUATION"
)

var ErrorCategories = []string{
	ErrorLexicalChoice,
	ErrorGrammarSyntax,
	ErrorIdiomaticity,
	ErrorCollocation,
	ErrorStyleRegister,
	ErrorPunctuation,
}

type ErrorFinding struct {
	Category string `json:"category"`
	Example  string `json:"example"`
	Fix      string `json:"fix"`
}

type PracticeItem struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer,omitempty"`
}

// ErrorReport 评估服务返回的结构化错误分析
type ErrorReport struct {
	Findings []ErrorFinding `json:"findings"`
	Practice []PracticeItem `json:"practice"`
	Summary  string         `json:"summary"`
}

// TranslationAnalysis 直译/意译对比的结构化结果
type TranslationAnalysis struct {
	SourceLang Language `json:"sourceLang"`
	TargetLang Language `json:"targetLang"`
	Literal    string   `json:"literal"`
	Natural    string   `json:"natural"`
	KeyChoices []string `json:"keyChoices"`
	Hints      []string `json:"hints"`
	// 解析失败时保留原始文本
	Raw     string `json:"raw,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// Structured 是否成功拿到直译与意译两个版本
func (a *TranslationAnalysis) Structured() bool {
	return a.Literal != "" || a.Natural != ""
}
