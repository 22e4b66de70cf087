package exporter

import (
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/ports"
	"encoding/json"
	"fmt"
	"io"
)

// JSONExporter выводит результат как отформатированный JSON.
type JSONExporter struct{}

// NewJSONExporter создает новый экземпляр JSONExporter.
func NewJSONExporter() ports.Exporter {
	return &JSONExporter{}
}

// Export пишет результат с отступом в два пробела, эмодзи не экранируются.
func (e *JSONExporter) Export(w io.Writer, result *domain.AnalysisResult) error {
	if result == nil {
		result = &domain.AnalysisResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
