package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
)

func (r UserRole) Valid() bool {
	return r == Student || r == Instructor
}

// Settings 侧边栏设置，对应一次会话内的翻译偏好
type Settings struct {
	AutoDetect bool     `json:"autoDetect"`
	SourceLang Language `json:"sourceLang"`
	TargetLang Language `json:"targetLang"`
	CEFR       string   `json:"cefr"`
	Style      string   `json:"style"`
	Tone       string   `json:"tone"`
	Domain     string   `json:"domain"`
}

func DefaultSettings() Settings {
	return Settings{
		AutoDetect: true,
		SourceLang: Arabic,
		TargetLang: English,
		CEFR:       "B1",
		Style:      "Concise",
		Tone:       "Neutral",
		Domain:     "General",
	}
}

var (
	CEFRLevels = []string{"A2", "B1", "B2", "C1"}
	Styles     = []string{"Concise", "Teacherly", "Exam-focused"}
	Tones      = []string{"Neutral", "Academic", "Informal", "Professional", "Literary"}
	Domains    = []string{"General", "Engineering", "Legal", "Media", "Medical", "Business"}
)

// Normalize 将非法取值回退为默认值
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if !s.SourceLang.Valid() {
		s.SourceLang = d.SourceLang
	}
	if !s.TargetLang.Valid() {
		s.TargetLang = d.TargetLang
	}
	if !contains(CEFRLevels, s.CEFR) {
		s.CEFR = d.CEFR
	}
	if !contains(Styles, s.Style) {
		s.Style = d.Style
	}
	if !contains(Tones, s.Tone) {
		s.Tone = d.Tone
	}
	if !contains(Domains, s.Domain) {
		s.Domain = d.Domain
	}
	return s
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Session 每个浏览器会话一份的上下文对象，取代全局可变状态
// 在解锁时创建，注销或空闲过期时丢弃
type Session struct {
	ID        string     `json:"id"`
	Role      UserRole   `json:"role"`
	Student   string     `json:"student"`
	Group     string     `json:"group"`
	Settings  Settings   `json:"settings"`
	Workflow  *Workflow  `json:"workflow,omitempty"`
	Quiz      *QuizState `json:"quiz,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	LastSeen  time.Time  `json:"lastSeen"`
}

func NewSessionID() string {
	return uuid.New().String()[:8]
}

func NewSession(role UserRole, student, group string, now time.Time) *Session {
	return &Session{
		ID:        NewSessionID(),
		Role:      role,
		Student:   student,
		Group:     group,
		Settings:  DefaultSettings(),
		CreatedAt: now,
		LastSeen:  now,
	}
}

func (s *Session) IsInstructor() bool {
	return s.Role == Instructor
}

// View 对外展示的会话副本
func (s *Session) View() *Session {
	v := *s
	v.Workflow = s.Workflow.View()
	v.Quiz = s.Quiz.View()
	return &v
}
