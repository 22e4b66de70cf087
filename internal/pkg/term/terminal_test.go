package term

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestTerminal_ReadText(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminalFrom(strings.NewReader("1/2/24, 10:00 - alice: hi\n"), &out, false)

	text, err := term.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "1/2/24, 10:00 - alice: hi\n", text)
	assert.Empty(t, out.String(), "подсказка не нужна для перенаправленного ввода")
}

func TestTerminal_ReadText_Interactive(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminalFrom(strings.NewReader("hello"), &out, true)

	text, err := term.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Contains(t, out.String(), "Ctrl+D")
	assert.True(t, term.Interactive())
}

func TestTerminal_ReadText_Empty(t *testing.T) {
	term := NewTerminalFrom(strings.NewReader(" \n\t"), &bytes.Buffer{}, false)

	text, err := term.ReadText()
	require.NoError(t, err, "пустой ввод проверяется на уровне collector")
	assert.Equal(t, " \n\t", text)
}

func TestTerminal_ReadText_ReadError(t *testing.T) {
	term := NewTerminalFrom(failingReader{}, &bytes.Buffer{}, false)

	_, err := term.ReadText()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}
