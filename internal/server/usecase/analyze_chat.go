package usecase

import (
	"chat-analyzer/internal/cache"
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/pkg/config"
	"chat-analyzer/internal/ports"
	"context"
	"fmt"
	"log/slog"
)

// AnalyzeChatUseCase инкапсулирует бизнес-логику анализа текста экспорта чата.
type AnalyzeChatUseCase struct {
	cfg        *config.Config
	parser     ports.Parser
	analyzer   ports.ChatAnalyzer
	cacheStore *cache.CacheStore
}

// NewAnalyzeChatUseCase создает новый экземпляр AnalyzeChatUseCase.
func NewAnalyzeChatUseCase(
	cfg *config.Config,
	parser ports.Parser,
	analyzer ports.ChatAnalyzer,
	cacheStore *cache.CacheStore,
) *AnalyzeChatUseCase {
	return &AnalyzeChatUseCase{
		cfg:        cfg,
		parser:     parser,
		analyzer:   analyzer,
		cacheStore: cacheStore,
	}
}

// AnalyzeChat разбирает текст, строит статистику и кэширует результат по хешу содержимого.
// Ошибки разбора возвращаются как есть, чтобы вызывающий мог отличить их от прочих.
func (uc *AnalyzeChatUseCase) AnalyzeChat(ctx context.Context, content string) (*domain.AnalysisResult, error) {
	hash := cache.ContentHash([]byte(content))

	if cachedItem, found := uc.cacheStore.Get(hash); found {
		slog.Info("cache hit", "hash", hash)
		return cachedItem.Result, nil
	}

	messages, err := uc.parser.Parse(content)
	if err != nil {
		return nil, err
	}
	slog.Info("chat parsed", "hash", hash, "message_count", len(messages))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("анализ прерван: %w", err)
	}

	result := uc.analyzer.Analyze(messages)

	ttl := uc.cfg.Processing.CacheTTL
	uc.cacheStore.Put(hash, result, ttl)
	slog.Debug("result cached", "hash", hash, "ttl", ttl.String())

	return result, nil
}
