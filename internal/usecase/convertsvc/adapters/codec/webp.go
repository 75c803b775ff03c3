package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/webp"

	"github.com/yourname/webp_lite/internal/config"
	"github.com/yourname/webp_lite/internal/models"
)

// EncodeOptions содержит параметры кодирования, одинаковые для всех запросов.
type EncodeOptions struct {
	Backend    string
	Quality    int
	Method     int
	Lossless   bool
	Exact      bool
	AutoOrient bool
}

type encodeFunc func(w io.Writer, img image.Image) error

// WebPCodec декодирует любой зарегистрированный растровый формат и кодирует результат в WebP.
type WebPCodec struct {
	opts   EncodeOptions
	encode encodeFunc
}

// NewWebPCodec выбирает бэкенд кодирования по имени.
func NewWebPCodec(opts EncodeOptions) (*WebPCodec, error) {
	c := &WebPCodec{opts: opts}

	switch opts.Backend {
	case config.BackendWasm, "":
		c.encode = c.encodeWasm
	case config.BackendNative:
		c.encode = encodeNative
	default:
		return nil, fmt.Errorf("unknown webp backend %q", opts.Backend)
	}

	return c, nil
}

// Probe читает только заголовок изображения: размеры и формат.
func (c *WebPCodec) Probe(data []byte) (image.Config, string, error) {
	return image.DecodeConfig(bytes.NewReader(data))
}

// Transcode декодирует data с автоопределением формата и кодирует в WebP.
// Размеры результата совпадают с размерами исходника.
func (c *WebPCodec) Transcode(ctx context.Context, data []byte) ([]byte, image.Point, error) {
	if len(data) == 0 {
		return nil, image.Point{}, models.NewConversionError(models.StageDecode, errors.New("empty input"))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(c.opts.AutoOrient))
	if err != nil {
		return nil, image.Point{}, models.NewConversionError(models.StageDecode, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, image.Point{}, models.NewConversionError(models.StageTimeout, err)
	}

	var buf bytes.Buffer
	if err := c.encode(&buf, img); err != nil {
		return nil, image.Point{}, models.NewConversionError(models.StageEncode, err)
	}

	return buf.Bytes(), img.Bounds().Size(), nil
}

func (c *WebPCodec) encodeWasm(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, webp.Options{
		Quality:  c.opts.Quality,
		Method:   c.opts.Method,
		Lossless: c.opts.Lossless,
		Exact:    c.opts.Exact,
	})
}

// nativewebp умеет только lossless VP8L.
func encodeNative(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, nil)
}
