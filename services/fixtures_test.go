package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/heartletter/letter_api/services/repositories"
	"github.com/heartletter/letter_api/shared"
)

var errStoreDown = errors.New("store unavailable")

// fakeLLM answers by system prompt. Prompts without an answer fail.
type fakeLLM struct {
	mu      sync.Mutex
	answers map[string]string
	calls   []CompletionRequest
}

func newFakeLLM(answers map[string]string) *fakeLLM {
	if answers == nil {
		answers = map[string]string{}
	}
	return &fakeLLM{answers: answers}
}

func (f *fakeLLM) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if out, ok := f.answers[req.System]; ok {
		return out, nil
	}
	return "", errors.New("model unavailable")
}

func (f *fakeLLM) callsFor(system string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.System == system {
			n++
		}
	}
	return n
}

// flakyStore fails writes once failWrites is set.
type flakyStore struct {
	repositories.Store
	failWrites atomic.Bool
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	if s.failWrites.Load() {
		return errStoreDown
	}
	return s.Store.Set(ctx, key, value)
}

type testEnv struct {
	mr      *miniredis.Miniredis
	store   *flakyStore
	storage *StorageService
	llm     *fakeLLM
	ai      *AIService
}

func newTestEnv(t *testing.T, answers map[string]string) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &flakyStore{Store: repositories.NewRedisStore(client)}
	llm := newFakeLLM(answers)
	return &testEnv{
		mr:      mr,
		store:   store,
		storage: NewStorageService(repositories.NewBaseRepository(store)),
		llm:     llm,
		ai:      NewAIService(llm, 42),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func requireAppError(t *testing.T, err error, status int) *shared.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, status, appErr.StatusCode)
	return appErr
}
