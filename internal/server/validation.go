package server

import (
	"fmt"
	"net/http"
	"strings"
)

// FileField — имя поля multipart-формы с файлом чата.
const FileField = "chatFile"

// Сообщения об ошибках, возвращаемые клиентам в поле error.
const (
	MsgFileEmpty        = "File is empty"
	MsgOnlyTxt          = "Only .txt files are allowed"
	MsgFileContentEmpty = "File content is empty"
	MsgContentEmpty     = "Content cannot be empty"
	MsgEitherParam      = "Either chatFile or content parameter must be provided"
	MsgFileRequired     = "Required part 'chatFile' is not present"
	MsgInvalidForm      = "Invalid multipart form"
	MsgInvalidBody      = "Invalid request body"
)

const (
	// multipartMemory — часть формы, хранимая в памяти; остальное уходит во временные файлы.
	multipartMemory     = 1 << 20
	multipartOverhead   = 64 << 10
	textRequestOverhead = 64 << 10
)

// validateUpload проверяет имя и размер загруженного файла. Пустая строка — файл допустим.
func (s *Server) validateUpload(name string, size int64) string {
	switch {
	case size <= 0:
		return MsgFileEmpty
	case !strings.HasSuffix(strings.ToLower(name), ".txt"):
		return MsgOnlyTxt
	case size > s.cfg.MaxUploadSize():
		return s.sizeLimitMessage()
	}
	return ""
}

func (s *Server) sizeLimitMessage() string {
	return fmt.Sprintf("File size exceeds %dMB limit", s.cfg.Server.MaxUploadSizeMB)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func analysisFailed(err error) string {
	return "Error analyzing chat: " + err.Error()
}

// statusText форматирует статус в виде "400 BAD_REQUEST".
func statusText(code int) string {
	return fmt.Sprintf("%d %s", code, strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_")))
}
