package service

import (
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/repository"
	"sync"
	"testing"
	"time"
)

// ── 测试辅助 ──

// fakeLLM 按顺序返回预设回复，最后一条重复使用
type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	chunks  []string
	err     error
	prompts []string
	opts    []ChatOptions
}

func (f *fakeLLM) Chat(_ context.Context, messages []AIChatMessage, opts ChatOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, messages[len(messages)-1].Content)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeLLM) ChatStream(_ context.Context, _ []AIChatMessage, _ ChatOptions) (<-chan string, <-chan error) {
	out := make(chan string, len(f.chunks))
	errChan := make(chan error, 1)
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	if f.err != nil {
		errChan <- f.err
	}
	close(errChan)
	return out, errChan
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type testRepos struct {
	store        *repository.RecordStore
	assignments  *repository.AssignmentRepository
	submissions  *repository.SubmissionRepository
	reflections  *repository.ReflectionRepository
	glossary     *repository.GlossaryRepository
	translations *repository.TranslationLogRepository
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()
	store, err := repository.NewRecordStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建记录存储失败: %v", err)
	}
	return &testRepos{
		store:        store,
		assignments:  repository.NewAssignmentRepository(store),
		submissions:  repository.NewSubmissionRepository(store),
		reflections:  repository.NewReflectionRepository(store),
		glossary:     repository.NewGlossaryRepository(store),
		translations: repository.NewTranslationLogRepository(store),
	}
}

// fixedClock 每次调用前进一秒，保证创建时间严格递增
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(time.Second)
		return t
	}
}

func newStudent(group string) *model.Session {
	return model.NewSession(model.Student, "Lina", group, time.Now())
}

func newInstructor(group string) *model.Session {
	return model.NewSession(model.Instructor, "Dr. Karim", group, time.Now())
}
