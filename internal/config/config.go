package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr      = ":8080"
	defaultRoutePath       = "/convert"
	defaultMaxUploadBytes  = 32 << 20
	defaultMaxPixels       = 100_000_000
	defaultConvertTimeout  = 30 * time.Second
	defaultShutdownTimeout = 15 * time.Second

	BackendWasm   = "wasm"
	BackendNative = "native"
)

type Config struct {
	ListenAddr      string        `yaml:"listen_addr" json:"listen_addr"`
	RoutePath       string        `yaml:"route_path" json:"route_path"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" json:"max_upload_bytes"`
	MaxConcurrent   int           `yaml:"max_concurrent" json:"max_concurrent"`
	MaxPixels       int64         `yaml:"max_pixels" json:"max_pixels"`
	ConvertTimeout  time.Duration `yaml:"convert_timeout" json:"convert_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	Encoder         Encoder       `yaml:"encoder" json:"encoder"`
	Log             Log           `yaml:"log" json:"log"`
}

// Encoder задаёт параметры WebP-кодировщика, общие для всех запросов.
type Encoder struct {
	Backend  string `yaml:"backend" json:"backend"`
	Quality  int    `yaml:"quality" json:"quality"`
	Method   int    `yaml:"method" json:"method"`
	Lossless bool   `yaml:"lossless" json:"lossless"`
	Exact    bool   `yaml:"exact" json:"exact"`

	// AutoOrient поворачивает JPEG по EXIF до кодирования.
	AutoOrient bool `yaml:"auto_orient" json:"auto_orient"`
}

type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default возвращает конфигурацию, с которой сервис стартует без файла.
func Default() *Config {
	return &Config{
		ListenAddr:      defaultListenAddr,
		RoutePath:       defaultRoutePath,
		MaxUploadBytes:  defaultMaxUploadBytes,
		MaxConcurrent:   runtime.NumCPU(),
		MaxPixels:       defaultMaxPixels,
		ConvertTimeout:  defaultConvertTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
		Encoder: Encoder{
			Backend: BackendWasm,
			Quality: 75,
			Method:  4,
		},
		Log: Log{Level: "info", Format: "json"},
	}
}

// Load читает YAML-конфигурацию поверх дефолтов, применяет ENV-переопределения и валидирует результат.
// Отсутствующий файл не ошибка: сервис поднимется на дефолтах.
func Load() (*Config, error) {
	path := getenv("CONFIG_PATH", "./config.yaml")

	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = runtime.NumCPU()
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ENV override
func (c *Config) applyEnv() error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("ROUTE_PATH"); v != "" {
		c.RoutePath = v
	}
	if v := os.Getenv("ENCODER_BACKEND"); v != "" {
		c.Encoder.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}

	var err error
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if c.MaxUploadBytes, err = strconv.ParseInt(v, 10, 64); err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
	}
	if v := os.Getenv("MAX_CONCURRENT"); v != "" {
		if c.MaxConcurrent, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("MAX_CONCURRENT: %w", err)
		}
	}
	if v := os.Getenv("CONVERT_TIMEOUT"); v != "" {
		if c.ConvertTimeout, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("CONVERT_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("ENCODER_QUALITY"); v != "" {
		if c.Encoder.Quality, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("ENCODER_QUALITY: %w", err)
		}
	}

	return nil
}

// Validate проверяет, что значения пригодны для запуска.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("listen_addr is empty"))
	}
	if !strings.HasPrefix(c.RoutePath, "/") {
		errs = append(errs, fmt.Errorf("route_path %q must start with /", c.RoutePath))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max_upload_bytes must be > 0"))
	}
	if c.MaxConcurrent < 0 {
		errs = append(errs, errors.New("max_concurrent must be >= 0"))
	}
	if c.MaxPixels <= 0 {
		errs = append(errs, errors.New("max_pixels must be > 0"))
	}
	if c.ConvertTimeout <= 0 {
		errs = append(errs, errors.New("convert_timeout must be > 0"))
	}
	if c.Encoder.Quality < 0 || c.Encoder.Quality > 100 {
		errs = append(errs, fmt.Errorf("encoder.quality %d out of range 0..100", c.Encoder.Quality))
	}
	if c.Encoder.Method < 0 || c.Encoder.Method > 6 {
		errs = append(errs, fmt.Errorf("encoder.method %d out of range 0..6", c.Encoder.Method))
	}
	switch c.Encoder.Backend {
	case BackendWasm, BackendNative:
	default:
		errs = append(errs, fmt.Errorf("encoder.backend %q is unknown", c.Encoder.Backend))
	}

	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
