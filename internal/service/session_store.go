package service

import (
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.etcd.io/bbolt"
)

// SessionStore 会话上下文的持久化；保存的是副本，调用方修改后需 Save
type SessionStore interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, sess *model.Session) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	data     []byte
	lastSeen time.Time
}

// MemorySessionStore 进程内会话存储，空闲超过 ttl 的会话定期清理
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	s := &MemorySessionStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.evictExpired()
			case <-s.stop:
				return
			}
		}
	}()

	return s
}

func (s *MemorySessionStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, id)
		}
	}
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.now().Sub(e.lastSeen) > s.ttl {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, util.ErrSessionNotFound
	}

	var sess model.Session
	if err := json.Unmarshal(e.data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[sess.ID] = &memoryEntry{data: data, lastSeen: s.now()}
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Close 停止后台清理
func (s *MemorySessionStore) Close() {
	close(s.stop)
}

const redisSessionPrefix = "edu_translator:session:"

// RedisSessionStore 多实例部署时使用，过期交给 Redis
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.rdb.Get(ctx, redisSessionPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisSessionPrefix+sess.ID, data, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, redisSessionPrefix+id).Err()
}

var boltSessionBucket = []byte("sessions")

type boltRecord struct {
	LastSeen time.Time       `json:"lastSeen"`
	Session  json.RawMessage `json:"session"`
}

// BoltSessionStore 单机持久化会话，进程重启后会话仍然有效
type BoltSessionStore struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

func NewBoltSessionStore(path string, ttl time.Duration) (*BoltSessionStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltSessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltSessionStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *BoltSessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	var rec boltRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(boltSessionBucket).Get([]byte(id))
		if v == nil {
			return util.ErrSessionNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, err
	}
	if s.now().Sub(rec.LastSeen) > s.ttl {
		_ = s.Delete(ctx, id)
		return nil, util.ErrSessionNotFound
	}

	var sess model.Session
	if err := json.Unmarshal(rec.Session, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *BoltSessionStore) Save(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	rec, err := json.Marshal(boltRecord{LastSeen: s.now(), Session: data})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltSessionBucket).Put([]byte(sess.ID), rec)
	})
}

func (s *BoltSessionStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltSessionBucket).Delete([]byte(id))
	})
}

// Purge 删除所有过期会话，返回删除数量
func (s *BoltSessionStore) Purge() (int, error) {
	removed := 0
	now := s.now()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltSessionBucket)
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var rec boltRecord
			if json.Unmarshal(v, &rec) != nil || now.Sub(rec.LastSeen) > s.ttl {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}

func (s *BoltSessionStore) Close() error {
	return s.db.Close()
}
