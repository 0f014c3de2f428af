// Package ocr turns uploaded images into text: images are normalized for
// recognition, passed to the tesseract CLI, and the result can be
// translated or exported as TXT/PDF.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
)

// Engine recognizes text in a prepared image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, lang string) (string, error)
}

// EngineError reports a failed recognition run.
type EngineError struct {
	Message string
	Err     error
}

func (e *EngineError) Error() string { return "ocr engine: " + e.Message }

func (e *EngineError) Unwrap() error { return e.Err }

// Tesseract runs the tesseract binary with LSTM-only recognition (--oem 3)
// and a single uniform text block layout (--psm 6).
type Tesseract struct {
	Path string // binary name or path; "tesseract" when empty
}

// Recognize encodes img as PNG, pipes it to tesseract and returns stdout.
func (t Tesseract) Recognize(ctx context.Context, img image.Image, lang string) (string, error) {
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	bin := t.Path
	if bin == "" {
		bin = "tesseract"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "stdin", "stdout", "-l", lang, "--oem", "3", "--psm", "6")
	cmd.Stdin = &in
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", &EngineError{Message: "tesseract is not installed", Err: err}
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", &EngineError{Message: msg, Err: err}
	}
	return stdout.String(), nil
}
