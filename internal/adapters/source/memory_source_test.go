package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource(t *testing.T) {
	t.Run("NewMemorySource создает корректный экземпляр", func(t *testing.T) {
		source := NewMemorySource("chat.txt", []byte("test data"))
		assert.NotNil(t, source)
	})

	t.Run("Fetch возвращает установленные данные", func(t *testing.T) {
		expectedData := []byte("test data")
		source := NewMemorySource("chat.txt", expectedData)

		file, err := source.Fetch()

		require.NoError(t, err)
		assert.Equal(t, "chat.txt", file.Name)
		assert.Equal(t, int64(9), file.Size)
		assert.Equal(t, expectedData, file.Content)
	})

	t.Run("Fetch возвращает ошибку для nil данных", func(t *testing.T) {
		source := NewMemorySource("chat.txt", nil)

		file, err := source.Fetch()

		assert.Error(t, err)
		assert.Nil(t, file)
		assert.Contains(t, err.Error(), "data not set")
	})

	t.Run("Fetch возвращает копию данных", func(t *testing.T) {
		originalData := []byte("test data")
		source := NewMemorySource("chat.txt", originalData)

		file, err := source.Fetch()
		require.NoError(t, err)

		file.Content[0] = 'X'

		assert.Equal(t, []byte("test data"), originalData)
	})

	t.Run("NewReaderSource ограничивает размер", func(t *testing.T) {
		source, err := NewReaderSource("big.txt", strings.NewReader("0123456789"), 4)
		require.NoError(t, err)

		file, err := source.Fetch()
		require.NoError(t, err)
		assert.Equal(t, "0123", string(file.Content))
	})
}
