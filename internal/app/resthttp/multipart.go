package resthttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yourname/webp_lite/internal/models"
	"github.com/yourname/webp_lite/pkg/convertproto"
)

// extractUpload читает multipart-поток и возвращает первую часть с именем `file`.
// Остальные поля и повторные `file` игнорируются.
func extractUpload(r *http.Request) (models.UploadedFile, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("%w: %v", models.ErrMissingFile, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return models.UploadedFile{}, models.ErrMissingFile
		}
		if err != nil {
			if isTooLarge(err) {
				return models.UploadedFile{}, models.ErrFileTooLarge
			}
			return models.UploadedFile{}, fmt.Errorf("%w: %v", models.ErrMissingFile, err)
		}

		if part.FormName() != convertproto.FileField {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			if isTooLarge(err) {
				return models.UploadedFile{}, models.ErrFileTooLarge
			}
			return models.UploadedFile{}, models.NewConversionError(models.StageRead, err)
		}

		return models.UploadedFile{
			Name:        part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Data:        data,
		}, nil
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
