package resthttp

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/yourname/webp_lite/internal/models"
	"github.com/yourname/webp_lite/pkg/convertproto"
	"github.com/yourname/webp_lite/pkg/httperrors"
)

// postConvert принимает файл из формы, перекодирует в WebP и отдаёт байты целиком.
func (s *Server) postConvert(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r.Context())

	upload, err := extractUpload(r)
	if err != nil {
		s.fail(w, log, err)
		return
	}

	img, err := s.Converter.Convert(r.Context(), upload)
	if err != nil {
		s.fail(w, log.With(zap.String("file", upload.Name), zap.Int("bytes", len(upload.Data))), err)
		return
	}

	w.Header().Set("Content-Type", convertproto.ContentTypeWebP)
	w.Header().Set("Content-Length", strconv.Itoa(img.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		log.Warn("write response", zap.Error(err))
	}
}

// fail пишет публичную ошибку, а причину оставляет в логе.
func (s *Server) fail(w http.ResponseWriter, log *zap.Logger, err error) {
	var ce *models.ConversionError
	switch {
	case errors.As(err, &ce):
		log.Error("Error processing file", zap.String("stage", ce.Stage), zap.Error(ce.Cause))
	case errors.Is(err, models.ErrMissingFile), errors.Is(err, models.ErrFileTooLarge):
		log.Info("upload rejected", zap.Error(err))
	default:
		log.Error("Error processing file", zap.Error(err))
	}

	httperrors.Write(w, err)
}
