package httperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/yourname/webp_lite/internal/models"
	"github.com/yourname/webp_lite/pkg/convertproto"
)

// Write переводит ошибку сервиса в HTTP-ответ. Клиент получает только
// фиксированное сообщение, детали причины сюда не попадают.
func Write(w http.ResponseWriter, err error) {
	status, msg := Classify(err)
	WriteJSON(w, status, convertproto.ErrorResponse{Error: msg})
}

// Classify возвращает HTTP-статус и публичное сообщение для ошибки.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrMissingFile):
		return http.StatusBadRequest, convertproto.MsgNoFile
	case errors.Is(err, models.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, convertproto.MsgFileTooLarge
	default:
		return http.StatusInternalServerError, convertproto.MsgFailedProcess
	}
}

// WriteJSON пишет payload без завершающего перевода строки, Content-Length выставляется точно.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"` + convertproto.MsgFailedProcess + `"}`)
	}

	w.Header().Set("Content-Type", convertproto.ContentTypeJSON)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
