package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	t.Run("NewFileSource создает корректный экземпляр", func(t *testing.T) {
		source := NewFileSource("chat.txt")
		assert.NotNil(t, source)
	})

	t.Run("Fetch возвращает ошибку для пустого пути к файлу", func(t *testing.T) {
		source := &FileSource{filePath: ""}

		file, err := source.Fetch()
		require.Error(t, err)
		assert.Nil(t, file)
		assert.Equal(t, "не указан путь к файлу", err.Error())
	})

	t.Run("Fetch возвращает ошибку для несуществующего файла", func(t *testing.T) {
		source := &FileSource{filePath: filepath.Join(t.TempDir(), "missing.txt")}

		file, err := source.Fetch()
		assert.Error(t, err)
		assert.Nil(t, file)
	})

	t.Run("Fetch возвращает данные для существующего файла", func(t *testing.T) {
		testData := []byte("1/2/24, 10:00 - Alice: hello\n")
		path := filepath.Join(t.TempDir(), "WhatsApp Chat.txt")
		require.NoError(t, os.WriteFile(path, testData, 0644))

		file, err := NewFileSource(path).Fetch()
		require.NoError(t, err)
		assert.Equal(t, "WhatsApp Chat.txt", file.Name)
		assert.Equal(t, int64(len(testData)), file.Size)
		assert.Equal(t, testData, file.Content)
	})
}
