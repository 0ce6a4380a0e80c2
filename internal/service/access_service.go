package service

import (
	"context"
	"crypto/subtle"
	"edu_translator_backend/internal/config"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/logger"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AccessService 课堂入口：开放时段、班级口令、教师口令，成功后签发会话令牌
type AccessService struct {
	mu       sync.RWMutex
	cfg      config.AccessConfig
	sessions *SessionService
	now      func() time.Time
}

func NewAccessService(cfg config.AccessConfig, sessions *SessionService) *AccessService {
	return &AccessService{cfg: cfg, sessions: sessions, now: time.Now}
}

// UpdateConfig 配置热更新时调用
func (s *AccessService) UpdateConfig(cfg config.AccessConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	logger.Log.Info("access config reloaded",
		zap.String("open_start", cfg.OpenStart),
		zap.String("open_end", cfg.OpenEnd),
		zap.Bool("class_password", cfg.Password != ""),
		zap.Bool("instructor_password", cfg.InstructorPassword != ""),
	)
}

func (s *AccessService) config() config.AccessConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// OpenHours 展示用的开放时段
func (s *AccessService) OpenHours() string {
	cfg := s.config()
	return fmt.Sprintf("%s–%s", cfg.OpenStart, cfg.OpenEnd)
}

// InWindow 当前时间是否处于开放时段
func (s *AccessService) InWindow() bool {
	cfg := s.config()
	return InWindow(cfg.OpenStart, cfg.OpenEnd, s.now())
}

// InWindow 按分钟比较，两端都包含；start 晚于 end 表示跨午夜。时间格式错误时视为开放
func InWindow(start, end string, now time.Time) bool {
	sm, err := parseClock(start)
	if err != nil {
		return true
	}
	em, err := parseClock(end)
	if err != nil {
		return true
	}
	cur := now.Hour()*60 + now.Minute()
	if sm <= em {
		return sm <= cur && cur <= em
	}
	return cur >= sm || cur <= em
}

func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// checkPassword 支持明文或 bcrypt 哈希
func checkPassword(expected, given string) bool {
	if strings.HasPrefix(expected, "$2a$") || strings.HasPrefix(expected, "$2b$") || strings.HasPrefix(expected, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}

type UnlockRequest struct {
	Password           string         `json:"password"`
	Role               model.UserRole `json:"role"`
	InstructorPassword string         `json:"instructorPassword"`
	Student            string         `json:"student"`
	Group              string         `json:"group"`
}

type UnlockResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Session   *model.Session `json:"session"`
}

// Unlock 校验开放时段与口令，创建会话并签发令牌
func (s *AccessService) Unlock(ctx context.Context, req UnlockRequest) (*UnlockResult, error) {
	cfg := s.config()
	now := s.now()

	if !InWindow(cfg.OpenStart, cfg.OpenEnd, now) {
		return nil, util.ErrAppClosed
	}
	if cfg.Password != "" && !checkPassword(cfg.Password, req.Password) {
		logger.Log.Warn("wrong class password")
		return nil, util.ErrWrongPassword
	}

	role := req.Role
	if role == "" {
		role = model.Student
	}
	if !role.Valid() {
		return nil, util.ErrPermissionDenied
	}
	if role == model.Instructor && cfg.InstructorPassword != "" && !checkPassword(cfg.InstructorPassword, req.InstructorPassword) {
		logger.Log.Warn("instructor unlock rejected")
		return nil, util.ErrInstructorLocked
	}

	sess, err := s.sessions.Start(ctx, role, strings.TrimSpace(req.Student), strings.TrimSpace(req.Group))
	if err != nil {
		return nil, err
	}

	ttl := cfg.TokenTTL()
	token, err := util.GenerateJWT(sess.ID, sess.Role, cfg.TokenSecret, ttl)
	if err != nil {
		return nil, err
	}
	return &UnlockResult{Token: token, ExpiresAt: now.Add(ttl), Session: sess}, nil
}

// ParseToken 校验令牌，供中间件使用
func (s *AccessService) ParseToken(token string) (*util.Claims, error) {
	return util.ParseJWT(token, s.config().TokenSecret)
}
