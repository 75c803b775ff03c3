package models

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFile      = errors.New("no file uploaded")
	ErrConversionFailed = errors.New("failed to process image")
	ErrFileTooLarge     = errors.New("file too large")
)

// Стадии конвертации, на которых может произойти сбой.
const (
	StageRead    = "read"
	StageDecode  = "decode"
	StageEncode  = "encode"
	StageTimeout = "timeout"
)

// ConversionError описывает конкретную причину ConversionFailure. Наружу уходит только
// ErrConversionFailed, сама причина остаётся в логах.
type ConversionError struct {
	Stage string
	Cause error
}

// NewConversionError оборачивает причину сбоя с указанием стадии.
func NewConversionError(stage string, cause error) *ConversionError {
	return &ConversionError{Stage: stage, Cause: cause}
}

func (e *ConversionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Stage, ErrConversionFailed.Error())
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// Is позволяет сравнивать любую ConversionError с ErrConversionFailed.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversionFailed
}
