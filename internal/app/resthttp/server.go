package resthttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yourname/webp_lite/internal/config"
	"github.com/yourname/webp_lite/internal/usecase/convertsvc"
	adapters "github.com/yourname/webp_lite/internal/usecase/convertsvc/adapters/codec"
	"github.com/yourname/webp_lite/pkg/convertproto"
)

type Server struct {
	Converter convertsvc.Service
	Cfg       *config.Config
	Log       *zap.Logger
}

// RouteOptions задаются при регистрации маршрута конвертации.
// Тело запроса фреймворк не разбирает: обработчик сам читает multipart-поток.
type RouteOptions struct {
	MaxBodyBytes int64
}

// NewServer конструктор
func NewServer(cfg *config.Config, log *zap.Logger) (http.Handler, *Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	converter, err := buildConvertService(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	srv := &Server{
		Converter: converter,
		Cfg:       cfg,
		Log:       log,
	}

	return srv.Routes(), srv, nil
}

// Routes собирает роутер с middleware и маршрутами сервиса.
func (s *Server) Routes() http.Handler {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	rtr := chi.NewRouter()
	rtr.Use(requestID(log))
	rtr.Use(accessLog)
	rtr.Use(middleware.Recoverer)

	path := convertproto.DefaultPath
	var opts RouteOptions
	if s.Cfg != nil {
		path = s.Cfg.RoutePath
		opts.MaxBodyBytes = s.Cfg.MaxUploadBytes
	}
	s.mountConvert(rtr, path, opts)

	rtr.Get(convertproto.HealthPath, s.health)
	rtr.Get("/admin/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", convertproto.ContentTypeJSON)
		_ = json.NewEncoder(w).Encode(s.Cfg)
	})

	return rtr
}

func (s *Server) mountConvert(r chi.Router, path string, opts RouteOptions) {
	r.With(limitBody(opts.MaxBodyBytes)).Post(path, s.postConvert)
}

func buildConvertService(cfg *config.Config, log *zap.Logger) (convertsvc.Service, error) {
	codec, err := adapters.NewWebPCodec(adapters.EncodeOptions{
		Backend:    cfg.Encoder.Backend,
		Quality:    cfg.Encoder.Quality,
		Method:     cfg.Encoder.Method,
		Lossless:   cfg.Encoder.Lossless,
		Exact:      cfg.Encoder.Exact,
		AutoOrient: cfg.Encoder.AutoOrient,
	})
	if err != nil {
		return nil, err
	}

	return convertsvc.New(convertsvc.Deps{
		Codec:         codec,
		Logger:        log.Named("convert"),
		MaxConcurrent: cfg.MaxConcurrent,
		Timeout:       cfg.ConvertTimeout,
		MaxPixels:     cfg.MaxPixels,
	}), nil
}
