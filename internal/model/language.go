package model

import "strings"

type Language string

const (
	English Language = "English"
	Arabic  Language = "Arabic"
)

func (l Language) Valid() bool {
	return l == English || l == Arabic
}

// ParseLanguage 空值或未知值返回 fallback
func ParseLanguage(s string, fallback Language) Language {
	l := Language(s)
	if l.Valid() {
		return l
	}
	return fallback
}

// IsArabicText 文本中出现阿拉伯字母区段 U+0600–U+06FF 即视为阿拉伯语
func IsArabicText(text string) bool {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

// Direction 按设置决定源/目标语言；开启自动检测时以文字脚本为准
func (s Settings) Direction(text string) (Language, Language) {
	if s.AutoDetect && strings.TrimSpace(text) != "" {
		if IsArabicText(text) {
			return Arabic, English
		}
		return English, Arabic
	}
	return s.SourceLang, s.TargetLang
}
