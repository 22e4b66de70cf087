package term

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/xerrors"
)

// Terminal читает вставленный текст чата из стандартного ввода.
type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewTerminal создает Terminal поверх os.Stdin и os.Stderr.
func NewTerminal() *Terminal {
	return &Terminal{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stderr,
		interactive: isTerminal(int(os.Stdin.Fd())),
	}
}

// NewTerminalFrom создает Terminal над произвольным вводом и выводом.
func NewTerminalFrom(in io.Reader, out io.Writer, interactive bool) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Interactive сообщает, подключен ли ввод к терминалу.
func (t *Terminal) Interactive() bool {
	return t.interactive
}

// ReadText читает ввод до EOF. В интерактивном режиме сначала печатает подсказку.
// Текст возвращается как есть: пустой ввод отклоняет collector.PrepareText.
func (t *Terminal) ReadText() (string, error) {
	if t.interactive {
		fmt.Fprintln(t.out, "Paste the chat export, then press Ctrl+D:")
	}

	data, err := io.ReadAll(t.in)
	if err != nil {
		return "", xerrors.Errorf("failed to read standard input: %w", err)
	}
	if t.interactive {
		fmt.Fprintln(t.out) // Новая строка после ввода
	}
	return string(data), nil
}

// IsTerminal сообщает, подключен ли файловый дескриптор к терминалу.
func IsTerminal(fd uintptr) bool {
	return isTerminal(int(fd))
}
