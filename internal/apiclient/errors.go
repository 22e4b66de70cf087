package apiclient

import "fmt"

// RequestError — сбой транспорта или неуспешный HTTP-статус.
type RequestError struct {
	// StatusCode равен 0, если ответ не был получен.
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("Server error: %d", e.StatusCode)
	default:
		return "request failed"
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ApplicationError — сервис ответил телом с полем error.
type ApplicationError struct {
	StatusCode int
	Message    string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("analysis service error: %s", e.Message)
}

// ServiceMessage возвращает сообщение сервиса без изменений.
func (e *ApplicationError) ServiceMessage() string {
	return e.Message
}
