// Package convertproto описывает HTTP-протокол сервиса конвертации в WebP,
// общий для сервера и клиента.
package convertproto

// Параметры протокола.
const (
	DefaultPath = "/convert"
	HealthPath  = "/health"
	FileField   = "file"

	ContentTypeWebP = "image/webp"
	ContentTypeJSON = "application/json"

	HeaderRequestID = "X-Request-Id"
)

// Фиксированные тексты ошибок, которые видит клиент.
const (
	MsgNoFile        = "No file uploaded"
	MsgFailedProcess = "Failed to process image"
	MsgFileTooLarge  = "File too large"
)

// ErrorResponse задаёт тело любого неуспешного ответа.
type ErrorResponse struct {
	Error string `json:"error"`
}
