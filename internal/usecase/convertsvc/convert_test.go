package convertsvc

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yourname/webp_lite/internal/models"
)

// fakeCodec отдаёт вход как есть и считает одновременные вызовы.
type fakeCodec struct {
	cfg      image.Config
	probeErr error
	err      error
	block    chan struct{}

	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeCodec) Probe([]byte) (image.Config, string, error) {
	return f.cfg, "fake", f.probeErr
}

func (f *fakeCodec) Transcode(_ context.Context, data []byte) ([]byte, image.Point, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, image.Point{}, f.err
	}
	out := append([]byte("webp:"), data...)
	return out, image.Point{X: f.cfg.Width, Y: f.cfg.Height}, nil
}

// panicCodec имитирует внутреннюю ошибку библиотеки кодека.
type panicCodec struct{}

func (panicCodec) Probe([]byte) (image.Config, string, error) {
	return image.Config{Width: 1, Height: 1}, "fake", nil
}

func (panicCodec) Transcode(context.Context, []byte) ([]byte, image.Point, error) {
	panic("codec internal error")
}

func file(data string) models.UploadedFile {
	return models.UploadedFile{Name: "a.png", Data: []byte(data)}
}

func TestConvert_OK(t *testing.T) {
	svc := New(Deps{Codec: &fakeCodec{cfg: image.Config{Width: 4, Height: 2}}, MaxConcurrent: 1})

	got, err := svc.Convert(context.Background(), file("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Data) != "webp:abc" || got.Len() != 8 || got.Width != 4 || got.Height != 2 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestConvert_Failures(t *testing.T) {
	tests := []struct {
		name  string
		codec *fakeCodec
		data  string
		max   int64
		stage string
	}{
		{"empty", &fakeCodec{}, "", 0, models.StageDecode},
		{"probe", &fakeCodec{probeErr: image.ErrFormat}, "x", 0, models.StageDecode},
		{"too many pixels", &fakeCodec{cfg: image.Config{Width: 1000, Height: 1000}}, "x", 999_999, models.StageDecode},
		{"plain codec error", &fakeCodec{err: errors.New("boom")}, "x", 0, models.StageEncode},
		{"typed codec error", &fakeCodec{err: models.NewConversionError(models.StageDecode, errors.New("bad"))}, "x", 0, models.StageDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(Deps{Codec: tt.codec, MaxConcurrent: 1, MaxPixels: tt.max})
			_, err := svc.Convert(context.Background(), file(tt.data))
			if !errors.Is(err, models.ErrConversionFailed) {
				t.Fatalf("expected ErrConversionFailed, got %v", err)
			}
			var ce *models.ConversionError
			if !errors.As(err, &ce) || ce.Stage != tt.stage {
				t.Fatalf("stage = %+v, want %s", ce, tt.stage)
			}
		})
	}
}

func TestConvert_Timeout(t *testing.T) {
	codec := &fakeCodec{block: make(chan struct{})}
	defer close(codec.block)
	svc := New(Deps{Codec: codec, MaxConcurrent: 1, Timeout: 20 * time.Millisecond})

	_, err := svc.Convert(context.Background(), file("x"))
	var ce *models.ConversionError
	if !errors.As(err, &ce) || ce.Stage != models.StageTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestConvert_SlotHeldUntilCodecReturns(t *testing.T) {
	codec := &fakeCodec{block: make(chan struct{})}
	svc := New(Deps{Codec: codec, MaxConcurrent: 1, Timeout: 20 * time.Millisecond})

	if _, err := svc.Convert(context.Background(), file("x")); err == nil {
		t.Fatal("expected timeout")
	}
	// Первый вызов кодека всё ещё висит, второй не должен получить слот.
	if _, err := svc.Convert(context.Background(), file("y")); err == nil {
		t.Fatal("expected second call to time out waiting for slot")
	}
	close(codec.block)

	svc.Timeout = time.Second
	if _, err := svc.Convert(context.Background(), file("z")); err != nil {
		t.Fatalf("slot not released: %v", err)
	}
}

func TestConvert_ConcurrencyBounded(t *testing.T) {
	const limit = 3
	codec := &fakeCodec{cfg: image.Config{Width: 1, Height: 1}, block: make(chan struct{})}
	svc := New(Deps{Codec: codec, MaxConcurrent: limit, Timeout: 5 * time.Second})

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Convert(context.Background(), file("x"))
			errs <- err
		}()
	}

	deadline := time.After(2 * time.Second)
	for codec.inFlight.Load() < limit {
		select {
		case <-deadline:
			t.Fatal("codec never reached the limit")
		case <-time.After(time.Millisecond):
		}
	}
	close(codec.block)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	if peak := codec.peak.Load(); peak > limit {
		t.Fatalf("peak concurrency %d > %d", peak, limit)
	}
}

func TestConvert_CallerCancelled(t *testing.T) {
	codec := &fakeCodec{block: make(chan struct{})}
	defer close(codec.block)
	svc := New(Deps{Codec: codec, MaxConcurrent: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Convert(ctx, file("x"))
	if !errors.Is(err, models.ErrConversionFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled conversion failure, got %v", err)
	}
}

func TestConvert_CodecPanic(t *testing.T) {
	svc := New(Deps{Codec: panicCodec{}, MaxConcurrent: 1, Timeout: time.Second})

	_, err := svc.Convert(context.Background(), file("x"))
	var ce *models.ConversionError
	if !errors.As(err, &ce) || ce.Stage != models.StageEncode {
		t.Fatalf("expected encode-stage failure, got %v", err)
	}
	if !errors.Is(err, models.ErrConversionFailed) {
		t.Fatalf("expected ErrConversionFailed, got %v", err)
	}

	// Слот вернулся в семафор после паники.
	svc.Codec = &fakeCodec{cfg: image.Config{Width: 1, Height: 1}}
	if _, err := svc.Convert(context.Background(), file("y")); err != nil {
		t.Fatalf("slot not released after panic: %v", err)
	}
}
