package router

import (
	"chat-analyzer/internal/apiclient"
	"chat-analyzer/internal/domain"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend - это мок-реализация экземпляра сервиса анализа для использования в тестах.
type mockBackend struct {
	mockID string
	mu     sync.RWMutex
	// healthErr симулирует состояние здоровья экземпляра.
	healthErr error
	// returnErr симулирует ошибку от API.
	returnErr error
	// Счетчик вызовов анализа для верификации в тестах.
	calls atomic.Int32
}

func newMockBackend(id string, isHealthy bool) *mockBackend {
	b := &mockBackend{mockID: id}
	if !isHealthy {
		b.healthErr = errors.New("backend is not healthy")
	}
	return b
}

func (m *mockBackend) ID() string {
	return m.mockID
}

func (m *mockBackend) Health(ctx context.Context) (*domain.HealthStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.healthErr != nil {
		return nil, m.healthErr
	}
	return &domain.HealthStatus{Status: "UP"}, nil
}

func (m *mockBackend) setHealthy(isHealthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if isHealthy {
		m.healthErr = nil
	} else {
		m.healthErr = errors.New("backend is not healthy")
	}
}

func (m *mockBackend) setReturnError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnErr = err
}

func (m *mockBackend) result() (*domain.AnalysisResult, error) {
	m.calls.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &domain.AnalysisResult{MostActiveUser: domain.String(m.mockID)}, nil
}

func (m *mockBackend) AnalyzeFile(ctx context.Context, file *domain.ChatFile) (*domain.AnalysisResult, error) {
	return m.result()
}

func (m *mockBackend) AnalyzeText(ctx context.Context, content string) (*domain.AnalysisResult, error) {
	return m.result()
}

func newTestRouter(t *testing.T, backends ...Backend) *Router {
	t.Helper()
	r, err := NewRouter(context.Background(),
		WithBackends(backends...),
		WithHealthCheckInterval(time.Hour),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(r.Stop)
	return r
}

func servedBy(t *testing.T, r *Router) string {
	t.Helper()
	res, err := r.AnalyzeText(context.Background(), "hi")
	require.NoError(t, err)
	return res.GetMostActiveUser()
}

func TestRoundRobinStrategy(t *testing.T) {
	backends := []Backend{
		newMockBackend("backend-1", true),
		newMockBackend("backend-2", true),
		newMockBackend("backend-3", true),
	}

	strategy := NewRoundRobinStrategy()

	for _, expected := range []string{"backend-1", "backend-2", "backend-3", "backend-1"} {
		b, err := strategy.Next(backends)
		require.NoError(t, err)
		require.Equal(t, expected, b.ID())
	}
}

func TestRoundRobinStrategy_NoBackends(t *testing.T) {
	_, err := NewRoundRobinStrategy().Next(nil)
	require.ErrorIs(t, err, ErrNoBackends)
}

func TestNewRouter_NoBackends(t *testing.T) {
	_, err := NewRouter(context.Background())
	require.Error(t, err)
}

func TestRouter_Rotation(t *testing.T) {
	r := newTestRouter(t, newMockBackend("a", true), newMockBackend("b", true))

	assert.Equal(t, "a", servedBy(t, r))
	assert.Equal(t, "b", servedBy(t, r))
	assert.Equal(t, "a", servedBy(t, r))
}

func TestRouter_TransportFailureRemovesBackend(t *testing.T) {
	a := newMockBackend("a", true)
	b := newMockBackend("b", true)
	r := newTestRouter(t, a, b)

	a.setHealthy(false)
	a.setReturnError(&apiclient.RequestError{Err: errors.New("connection refused")})

	_, err := r.AnalyzeText(context.Background(), "hi")
	require.Error(t, err, "неудачный запрос не повторяется на другом экземпляре")
	assert.Equal(t, int32(0), b.calls.Load())

	require.Eventually(t, func() bool {
		return len(r.Healthy()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"b"}, r.Healthy())

	assert.Equal(t, "b", servedBy(t, r))
	assert.Equal(t, "b", servedBy(t, r))

	// Экземпляр восстановился и возвращается в ротацию после фоновой проверки.
	a.setHealthy(true)
	a.setReturnError(nil)
	r.checkUnhealthyBackends()
	assert.Equal(t, []string{"a", "b"}, r.Healthy())
}

func TestRouter_ApplicationErrorKeepsBackend(t *testing.T) {
	a := newMockBackend("a", true)
	r := newTestRouter(t, a)

	a.setHealthy(false)
	a.setReturnError(&apiclient.ApplicationError{StatusCode: 400, Message: "Content cannot be empty"})

	_, err := r.AnalyzeText(context.Background(), "hi")
	var appErr *apiclient.ApplicationError
	require.ErrorAs(t, err, &appErr)

	r.Stop()
	assert.Equal(t, []string{"a"}, r.Healthy())
}

func TestRouter_FailureAfterStop(t *testing.T) {
	a := newMockBackend("a", false)
	a.setReturnError(&apiclient.RequestError{StatusCode: 503})
	r := newTestRouter(t, a)
	r.Stop()

	_, err := r.AnalyzeText(context.Background(), "hi")
	require.Error(t, err)

	r.Stop()
	assert.Equal(t, []string{"a"}, r.Healthy(), "после остановки экземпляр не проверяется")
}

func TestRouter_AllUnhealthyFallsBackToFullList(t *testing.T) {
	a := newMockBackend("a", true)
	r := newTestRouter(t, a)
	r.setHealthy("a", false)

	assert.Equal(t, "a", servedBy(t, r))
}

func TestRouter_WithAPIClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"UP","message":"Chat Analyzer service is running","timestamp":"2024-01-15T10:30:00Z"}`))
	}))
	defer ts.Close()

	r := newTestRouter(t, apiclient.NewClient(ts.URL+"/api"))

	status, err := r.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UP", status.Status)
	assert.Equal(t, []string{ts.URL}, r.Healthy())
}
