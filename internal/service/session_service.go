package service

import (
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/logger"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionService 管理会话生命周期；同一会话的修改串行执行
type SessionService struct {
	store SessionStore
	locks sync.Map
	now   func() time.Time
}

func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{store: store, now: time.Now}
}

type SessionProfile struct {
	Student  *string         `json:"student"`
	Group    *string         `json:"group"`
	Settings *model.Settings `json:"settings"`
}

func (s *SessionService) lock(id string) *sync.Mutex {
	l, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// Start 解锁成功后创建新会话
func (s *SessionService) Start(ctx context.Context, role model.UserRole, student, group string) (*model.Session, error) {
	sess := model.NewSession(role, student, group, s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	logger.Log.Info("session started", zap.String("session", sess.ID), zap.String("role", string(role)))
	return sess, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	return s.store.Get(ctx, id)
}

// Update 加载会话、执行 fn，fn 成功时写回；fn 出错时会话保持不变
func (s *SessionService) Update(ctx context.Context, id string, fn func(sess *model.Session) error) (*model.Session, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			// 过期或伪造的会话不保留锁
			s.locks.Delete(id)
		}
		return nil, err
	}
	if err := fn(sess); err != nil {
		return sess, err
	}
	sess.LastSeen = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Touch 刷新空闲计时
func (s *SessionService) Touch(ctx context.Context, id string) (*model.Session, error) {
	return s.Update(ctx, id, func(*model.Session) error { return nil })
}

// UpdateProfile 修改侧边栏身份与设置
func (s *SessionService) UpdateProfile(ctx context.Context, id string, p SessionProfile) (*model.Session, error) {
	return s.Update(ctx, id, func(sess *model.Session) error {
		if p.Student != nil {
			sess.Student = *p.Student
		}
		if p.Group != nil {
			sess.Group = *p.Group
		}
		if p.Settings != nil {
			sess.Settings = p.Settings.Normalize()
		}
		return nil
	})
}

// SweepLocks 清理存储中已不存在的会话的锁，返回清理数量。
// 正被占用的锁跳过，下一轮再检查
func (s *SessionService) SweepLocks(ctx context.Context) int {
	n := 0
	s.locks.Range(func(k, v any) bool {
		l := v.(*sync.Mutex)
		if !l.TryLock() {
			return true
		}
		defer l.Unlock()

		if _, err := s.store.Get(ctx, k.(string)); errors.Is(err, util.ErrSessionNotFound) {
			s.locks.Delete(k)
			n++
		}
		return true
	})
	return n
}

// End 结束会话并丢弃上下文
func (s *SessionService) End(ctx context.Context, id string) error {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()
	defer s.locks.Delete(id)

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("session ended", zap.String("session", id))
	return nil
}
