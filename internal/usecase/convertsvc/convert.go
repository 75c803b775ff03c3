package convertsvc

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/yourname/webp_lite/internal/models"
)

type transcodeResult struct {
	data []byte
	size image.Point
	err  error
}

// Convert перекодирует файл в WebP. Любой сбой возвращается как *models.ConversionError.
func (c *Converter) Convert(ctx context.Context, file models.UploadedFile) (models.ConvertedImage, error) {
	if len(file.Data) == 0 {
		return models.ConvertedImage{}, models.NewConversionError(models.StageDecode, errors.New("empty file"))
	}

	if err := c.checkDimensions(file.Data); err != nil {
		return models.ConvertedImage{}, err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if err := c.limiter.Acquire(ctx, 1); err != nil {
		return models.ConvertedImage{}, models.NewConversionError(models.StageTimeout, fmt.Errorf("wait for slot: %w", err))
	}

	// Слот освобождает горутина кодека: иначе по таймауту лимит перестанет ограничивать CPU.
	done := make(chan transcodeResult, 1)
	go func() {
		defer c.limiter.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- transcodeResult{err: models.NewConversionError(models.StageEncode, fmt.Errorf("codec panic: %v", r))}
			}
		}()
		data, size, err := c.Codec.Transcode(ctx, file.Data)
		done <- transcodeResult{data: data, size: size, err: err}
	}()

	select {
	case <-ctx.Done():
		c.Logger.Warn("transcode abandoned",
			zap.String("file", file.Name),
			zap.Int("bytes", len(file.Data)),
			zap.Error(ctx.Err()))
		return models.ConvertedImage{}, models.NewConversionError(models.StageTimeout, ctx.Err())
	case res := <-done:
		if res.err != nil {
			var ce *models.ConversionError
			if errors.As(res.err, &ce) {
				return models.ConvertedImage{}, ce
			}
			return models.ConvertedImage{}, models.NewConversionError(models.StageEncode, res.err)
		}

		c.Logger.Debug("image converted",
			zap.String("file", file.Name),
			zap.Int("in_bytes", len(file.Data)),
			zap.Int("out_bytes", len(res.data)),
			zap.Int("width", res.size.X),
			zap.Int("height", res.size.Y))

		return models.ConvertedImage{Data: res.data, Width: res.size.X, Height: res.size.Y}, nil
	}
}

// checkDimensions отсекает изображения, распаковка которых не поместится в разумную память.
func (c *Converter) checkDimensions(data []byte) error {
	cfg, format, err := c.Codec.Probe(data)
	if err != nil {
		return models.NewConversionError(models.StageDecode, err)
	}
	if c.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > c.MaxPixels {
		return models.NewConversionError(models.StageDecode,
			fmt.Errorf("%s image %dx%d exceeds %d pixels", format, cfg.Width, cfg.Height, c.MaxPixels))
	}

	return nil
}
