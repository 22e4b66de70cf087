package source

import (
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/ports"
	"fmt"
	"os"
	"path/filepath"
)

// FileSource реализует интерфейс DataSource для чтения файла чата с диска,
// путь к которому указан в командной строке.
type FileSource struct {
	filePath string
}

// NewFileSource создает новый экземпляр FileSource.
func NewFileSource(filePath string) ports.DataSource {
	return &FileSource{filePath: filePath}
}

// Fetch читает файл по указанному пути. Имя файла в результате — базовое имя пути.
func (s *FileSource) Fetch() (*domain.ChatFile, error) {
	if s.filePath == "" {
		return nil, fmt.Errorf("не указан путь к файлу")
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", s.filePath, err)
	}

	return &domain.ChatFile{
		Name:    filepath.Base(s.filePath),
		Size:    int64(len(data)),
		Content: data,
	}, nil
}
