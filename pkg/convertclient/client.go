package convertclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/yourname/webp_lite/pkg/convertproto"
)

type ConvertRequest struct {
	FileName string
	Reader   io.Reader
	Size     int64
}

type Client interface {
	// Convert отправляет файл сервису и возвращает WebP-байты.
	Convert(ctx context.Context, baseURL string, req ConvertRequest) ([]byte, error)
}

// ResponseError описывает неуспешный ответ сервиса с текстом из JSON-поля error.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("convert failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("convert failed: %d %s", e.StatusCode, e.Message)
}

type Option func(*httpClient)

// WithHTTPClient подменяет http.Client, например для таймаутов.
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) { h.c = c }
}

// WithPath задаёт путь эндпоинта, если сервис настроен не на /convert.
func WithPath(path string) Option {
	return func(h *httpClient) { h.path = path }
}

// WithProgress включает ASCII-прогресс загрузки в w.
func WithProgress(w io.Writer) Option {
	return func(h *httpClient) { h.progress = w }
}

type httpClient struct {
	c        *http.Client
	path     string
	progress io.Writer
}

// New создаёт HTTP-клиент по умолчанию.
func New(opts ...Option) Client {
	h := &httpClient{
		c:    &http.Client{},
		path: convertproto.DefaultPath,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Convert стримит multipart-тело с полем `file`, не собирая его целиком в памяти.
func (h *httpClient) Convert(ctx context.Context, baseURL string, req ConvertRequest) ([]byte, error) {
	if req.Reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	name := req.FileName
	if name == "" {
		name = "upload"
	}

	var bar *progressBar
	body := req.Reader
	if h.progress != nil {
		bar = newProgressBar(h.progress, fmt.Sprintf("Converting %s", filepath.Base(name)), req.Size)
		body = io.TeeReader(req.Reader, progressWriter{bar: bar})
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(convertproto.FileField, filepath.Base(name))
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	u := strings.TrimRight(baseURL, "/") + h.path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		pr.CloseWithError(err)
		bar.Fail(err)
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	bar.render(true, "")

	resp, err := h.c.Do(httpReq)
	if err != nil {
		pr.CloseWithError(err)
		bar.Fail(err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = decodeError(resp)
		bar.Fail(err)
		return nil, err
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		bar.Fail(err)
		return nil, err
	}
	if resp.ContentLength >= 0 && int64(len(out)) != resp.ContentLength {
		err = fmt.Errorf("short response: got %d of %d bytes", len(out), resp.ContentLength)
		bar.Fail(err)
		return nil, err
	}
	if ct := resp.Header.Get("Content-Type"); ct != convertproto.ContentTypeWebP {
		err = fmt.Errorf("unexpected content type %q", ct)
		bar.Fail(err)
		return nil, err
	}

	bar.Finish()
	return out, nil
}

func decodeError(resp *http.Response) error {
	var payload convertproto.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload)
	return &ResponseError{StatusCode: resp.StatusCode, Message: payload.Error}
}
