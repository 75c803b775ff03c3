package convertsvc

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/yourname/webp_lite/internal/models"
)

type (
	// Codec это внешний кодек. Он читает заголовок и перекодирует байты в WebP.
	Codec interface {
		Probe(data []byte) (image.Config, string, error)
		Transcode(ctx context.Context, data []byte) ([]byte, image.Point, error)
	}

	// Service конвертирует загруженный файл в WebP.
	Service interface {
		Convert(ctx context.Context, file models.UploadedFile) (models.ConvertedImage, error)
	}
)

type Deps struct {
	Codec         Codec
	Logger        *zap.Logger
	MaxConcurrent int
	Timeout       time.Duration
	MaxPixels     int64
}

type Converter struct {
	Deps
	limiter *semaphore.Weighted
}

// New конструирует сервис конвертации с заданными зависимостями.
func New(deps Deps) *Converter {
	if deps.MaxConcurrent <= 0 {
		deps.MaxConcurrent = 1
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Converter{
		Deps:    deps,
		limiter: semaphore.NewWeighted(int64(deps.MaxConcurrent)),
	}
}
