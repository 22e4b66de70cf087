package ports

import (
	"chat-analyzer/internal/domain"
	"context"
	"io"
)

// DataSource определяет интерфейс для получения исходного файла чата.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает файл чата.
	Fetch() (*domain.ChatFile, error)
}

// Parser определяет интерфейс для разбора текста экспорта чата.
type Parser interface {
	// Parse преобразует сырой текст в список сообщений.
	Parse(content string) ([]domain.ChatMessage, error)
}

// ChatAnalyzer определяет интерфейс для построения статистики по сообщениям.
type ChatAnalyzer interface {
	Analyze(messages []domain.ChatMessage) *domain.AnalysisResult
}

// AnalysisService — клиентская сторона контракта сервиса анализа.
// Реализуется apiclient.Client, в тестах подменяется моками.
type AnalysisService interface {
	AnalyzeFile(ctx context.Context, file *domain.ChatFile) (*domain.AnalysisResult, error)
	AnalyzeText(ctx context.Context, content string) (*domain.AnalysisResult, error)
	Health(ctx context.Context) (*domain.HealthStatus, error)
}

// Exporter определяет интерфейс для вывода результата анализа.
type Exporter interface {
	// Export выводит результат анализа в w.
	Export(w io.Writer, result *domain.AnalysisResult) error
}
