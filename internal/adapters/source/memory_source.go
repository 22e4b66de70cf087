package source

import (
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/ports"
	"fmt"
	"io"
)

// MemorySource реализует интерфейс DataSource для файла, уже находящегося в памяти
// (загрузка из формы, документ Telegram).
type MemorySource struct {
	name string
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(name string, data []byte) ports.DataSource {
	return &MemorySource{name: name, data: data}
}

// NewReaderSource читает r целиком, не более limit байт (0 — без ограничения).
func NewReaderSource(name string, r io.Reader, limit int64) (ports.DataSource, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return &MemorySource{name: name, data: data}, nil
}

// Fetch возвращает файл из памяти.
func (s *MemorySource) Fetch() (*domain.ChatFile, error) {
	if s.data == nil {
		return nil, fmt.Errorf("data not set")
	}

	// Возвращаем копию данных, чтобы избежать изменений оригинальных данных
	dataCopy := make([]byte, len(s.data))
	copy(dataCopy, s.data)

	return &domain.ChatFile{
		Name:    s.name,
		Size:    int64(len(dataCopy)),
		Content: dataCopy,
	}, nil
}
