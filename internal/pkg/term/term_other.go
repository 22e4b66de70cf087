//go:build !unix

package term

// Вне unix подсказка ввода не печатается.
func isTerminal(int) bool {
	return false
}
