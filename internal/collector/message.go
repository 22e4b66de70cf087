package collector

import (
	"errors"
)

// ApplicationErrorMessage реализуется ошибками, которые несут готовое сообщение от сервиса анализа.
type ApplicationErrorMessage interface {
	error
	ServiceMessage() string
}

// UserMessage превращает любую ошибку в текст для области статуса.
// Ошибки ввода показываются как есть, ошибки сервиса — с префиксом "Error: ",
// остальные ошибки запроса — с префиксом "Error analyzing chat: ".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}

	var ae ApplicationErrorMessage
	if errors.As(err, &ae) {
		return "Error: " + ae.ServiceMessage()
	}

	return "Error analyzing chat: " + err.Error()
}
