package cache

import (
	"chat-analyzer/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore(t *testing.T) {
	t.Run("Создание нового хранилища кэша", func(t *testing.T) {
		cs := NewCacheStore()
		assert.NotNil(t, cs)
		assert.Zero(t, cs.Len())
	})

	t.Run("Запись и чтение из кэша", func(t *testing.T) {
		cs := NewCacheStore()
		key := "test_key"
		result := &domain.AnalysisResult{TotalMessages: domain.Int(3)}
		ttl := 1 * time.Minute

		cs.Put(key, result, ttl)

		item, found := cs.Get(key)
		require.True(t, found)
		require.NotNil(t, item)
		assert.Same(t, result, item.Result)
		assert.WithinDuration(t, time.Now().Add(ttl), item.ExpiresAt, 1*time.Second)
	})

	t.Run("Чтение несуществующего ключа", func(t *testing.T) {
		cs := NewCacheStore()
		_, found := cs.Get("non_existent_key")
		assert.False(t, found)
	})

	t.Run("Чтение просроченного ключа", func(t *testing.T) {
		cs := NewCacheStore()
		now := time.Now()
		cs.now = func() time.Time { return now }

		cs.Put("expired_key", &domain.AnalysisResult{}, time.Second)
		now = now.Add(2 * time.Second)

		_, found := cs.Get("expired_key")
		assert.False(t, found)
	})

	t.Run("Нулевой TTL отключает кэш", func(t *testing.T) {
		cs := NewCacheStore()
		cs.Put("key", &domain.AnalysisResult{}, 0)
		cs.Put("nil", nil, time.Minute)
		assert.Zero(t, cs.Len())
	})

	t.Run("Очистка просроченных ключей", func(t *testing.T) {
		cs := NewCacheStore()
		now := time.Now()
		cs.now = func() time.Time { return now }

		cs.Put("expired", &domain.AnalysisResult{}, time.Second)
		cs.Put("valid", &domain.AnalysisResult{}, time.Hour)
		now = now.Add(time.Minute)

		cs.CleanupExpired()

		assert.Equal(t, 1, cs.Len())
		_, foundValid := cs.Get("valid")
		assert.True(t, foundValid, "Действительный элемент не должен быть удален")
	})
}

func TestStartCleanupTicker(t *testing.T) {
	cs := NewCacheStore()

	cs.Put("expired", &domain.AnalysisResult{}, 50*time.Millisecond)
	cs.Put("valid", &domain.AnalysisResult{}, 1*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cs.StartCleanupTicker(ctx, 100*time.Millisecond)

	assert.Eventually(t, func() bool { return cs.Len() == 1 }, time.Second, 20*time.Millisecond,
		"Просроченный элемент должен быть удален таймером")

	_, foundValid := cs.Get("valid")
	assert.True(t, foundValid, "Действительный элемент должен остаться")
}

func TestContentHash(t *testing.T) {
	// SHA256 для "hello world"
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", ContentHash([]byte("hello world")))
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
}
