package ocr

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
)

// BulkConcurrency bounds how many images a bulk request recognizes at once.
const BulkConcurrency = 4

// Input is one image of a bulk request.
type Input struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Result is the recognized text of one bulk input.
type Result struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// Service decodes, prepares and recognizes images.
type Service struct {
	engine Engine
}

// NewService wraps an Engine.
func NewService(engine Engine) *Service {
	return &Service{engine: engine}
}

// Recognize returns the trimmed text found in the image read from r.
func (s *Service) Recognize(ctx context.Context, r io.Reader, lang string) (string, error) {
	img, err := Decode(r)
	if err != nil {
		return "", err
	}
	text, err := s.engine.Recognize(ctx, Prepare(img), lang)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// RecognizeAll recognizes every input concurrently and returns results in
// input order. The first failure cancels the remaining work.
func (s *Service) RecognizeAll(ctx context.Context, inputs []Input, lang string) ([]Result, error) {
	results := make([]Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(BulkConcurrency)
	for i, in := range inputs {
		g.Go(func() error {
			f, err := in.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", in.Filename, err)
			}
			defer f.Close()

			text, err := s.Recognize(gctx, f, lang)
			if err != nil {
				return fmt.Errorf("recognize %s: %w", in.Filename, err)
			}
			results[i] = Result{Filename: in.Filename, Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
