package models

import (
	"errors"
	"io"
	"testing"
)

func TestConversionErrorIs(t *testing.T) {
	err := NewConversionError(StageDecode, io.ErrUnexpectedEOF)

	if !errors.Is(err, ErrConversionFailed) {
		t.Fatal("expected ErrConversionFailed")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("expected cause to unwrap")
	}
	if errors.Is(err, ErrMissingFile) {
		t.Fatal("conversion error must not match ErrMissingFile")
	}

	var ce *ConversionError
	if !errors.As(err, &ce) || ce.Stage != StageDecode {
		t.Fatalf("unexpected stage: %+v", ce)
	}
}

func TestConvertedImageLen(t *testing.T) {
	img := ConvertedImage{Data: make([]byte, 42)}
	if img.Len() != 42 {
		t.Fatalf("Len = %d", img.Len())
	}
}
