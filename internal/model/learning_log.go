package model

import "time"

// Reflection 学习日志：对直译/意译的反思
type Reflection struct {
	Student    string    `json:"student"`
	Group      string    `json:"group"`
	Session    string    `json:"session"`
	SourceLang Language  `json:"sourceLang"`
	TargetLang Language  `json:"targetLang"`
	Domain     string    `json:"domain"`
	Tone       string    `json:"tone"`
	Text       string    `json:"text"`
	Reflection string    `json:"reflection"`
	Timestamp  time.Time `json:"timestamp"`
}

func (r *Reflection) ToRow() Row {
	return Row{
		"timestamp":   FormatTimestamp(r.Timestamp),
		"student":     r.Student,
		"group":       r.Group,
		"session":     r.Session,
		"source_lang": string(r.SourceLang),
		"target_lang": string(r.TargetLang),
		"domain":      r.Domain,
		"tone":        r.Tone,
		"text":        r.Text,
		"reflection":  r.Reflection,
	}
}

func ReflectionFromRow(r Row) Reflection {
	return Reflection{
		Student:    r["student"],
		Group:      r["group"],
		Session:    r["session"],
		SourceLang: Language(r["source_lang"]),
		TargetLang: Language(r["target_lang"]),
		Domain:     r["domain"],
		Tone:       r["tone"],
		Text:       r["text"],
		Reflection: r["reflection"],
		Timestamp:  ParseTimestamp(r["timestamp"]),
	}
}

// GlossaryEntry 个人词汇表条目
type GlossaryEntry struct {
	Student   string    `json:"student"`
	Group     string    `json:"group"`
	Session   string    `json:"session"`
	Lemma     string    `json:"lemma"`
	Notes     string    `json:"notes"`
	Timestamp time.Time `json:"timestamp"`
}

func (g *GlossaryEntry) ToRow() Row {
	return Row{
		"timestamp": FormatTimestamp(g.Timestamp),
		"student":   g.Student,
		"group":     g.Group,
		"session":   g.Session,
		"lemma":     g.Lemma,
		"notes":     g.Notes,
	}
}

func GlossaryEntryFromRow(r Row) GlossaryEntry {
	return GlossaryEntry{
		Student:   r["student"],
		Group:     r["group"],
		Session:   r["session"],
		Lemma:     r["lemma"],
		Notes:     r["notes"],
		Timestamp: ParseTimestamp(r["timestamp"]),
	}
}

// TranslationEvent 每次翻译请求的事件日志
type TranslationEvent struct {
	Student    string    `json:"student"`
	Group      string    `json:"group"`
	Session    string    `json:"session"`
	SourceLang Language  `json:"sourceLang"`
	TargetLang Language  `json:"targetLang"`
	Domain     string    `json:"domain"`
	Tone       string    `json:"tone"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *TranslationEvent) ToRow() Row {
	return Row{
		"timestamp":   FormatTimestamp(e.Timestamp),
		"student":     e.Student,
		"group":       e.Group,
		"session":     e.Session,
		"source_lang": string(e.SourceLang),
		"target_lang": string(e.TargetLang),
		"domain":      e.Domain,
		"tone":        e.Tone,
		"text":        e.Text,
	}
}

func TranslationEventFromRow(r Row) TranslationEvent {
	return TranslationEvent{
		Student:    r["student"],
		Group:      r["group"],
		Session:    r["session"],
		SourceLang: Language(r["source_lang"]),
		TargetLang: Language(r["target_lang"]),
		Domain:     r["domain"],
		Tone:       r["tone"],
		Text:       r["text"],
		Timestamp:  ParseTimestamp(r["timestamp"]),
	}
}
