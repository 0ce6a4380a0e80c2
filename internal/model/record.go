package model

// RecordKind 记录类型，每种类型对应一个 CSV 文件
type RecordKind string

const (
	KindAssignments  RecordKind = "assignments"
	KindSubmissions  RecordKind = "submissions"
	KindReflections  RecordKind = "reflections"
	KindGlossary     RecordKind = "glossary"
	KindTranslations RecordKind = "translations"
)

// Row 一行记录，列名到值
type Row map[string]string

// Schema 每种记录类型显式声明的列，Version 随列变化递增
type Schema struct {
	Kind    RecordKind `json:"kind"`
	Version int        `json:"version"`
	Columns []string   `json:"columns"`
}

// Has 判断列是否属于该 schema
func (s Schema) Has(column string) bool {
	for _, c := range s.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// FileName 记录文件名
func (k RecordKind) FileName() string {
	return string(k) + ".csv"
}

var schemas = map[RecordKind]Schema{
	KindAssignments: {
		Kind:    KindAssignments,
		Version: 1,
		Columns: []string{
			"timestamp", "code", "title", "mode", "source_lang", "target_lang", "domain", "tone",
			"deadline", "text", "mt_draft", "instructor", "group",
		},
	},
	KindSubmissions: {
		Kind:    KindSubmissions,
		Version: 2,
		Columns: []string{
			"timestamp", "code", "title", "student", "group", "session",
			"first_draft", "final", "feedback", "reflection",
		},
	},
	KindReflections: {
		Kind:    KindReflections,
		Version: 1,
		Columns: []string{
			"timestamp", "student", "group", "session", "source_lang", "target_lang",
			"domain", "tone", "text", "reflection",
		},
	},
	KindGlossary: {
		Kind:    KindGlossary,
		Version: 1,
		Columns: []string{"timestamp", "student", "group", "session", "lemma", "notes"},
	},
	KindTranslations: {
		Kind:    KindTranslations,
		Version: 1,
		Columns: []string{
			"timestamp", "student", "group", "session", "source_lang", "target_lang",
			"domain", "tone", "text",
		},
	},
}

// SchemaFor 返回记录类型的 schema
func SchemaFor(kind RecordKind) (Schema, bool) {
	s, ok := schemas[kind]
	return s, ok
}

// RecordKinds 按固定顺序返回所有记录类型
func RecordKinds() []RecordKind {
	return []RecordKind{KindAssignments, KindSubmissions, KindReflections, KindGlossary, KindTranslations}
}
