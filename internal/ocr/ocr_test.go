package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync/atomic"
	"testing"
)

// widthEngine reports the prepared image width as its text.
type widthEngine struct {
	calls atomic.Int32
	fail  bool
}

func (e *widthEngine) Recognize(_ context.Context, img image.Image, lang string) (string, error) {
	e.calls.Add(1)
	if e.fail {
		return "", &EngineError{Message: "boom"}
	}
	return fmt.Sprintf("  %d %s\n", img.Bounds().Dx(), lang), nil
}

func pngInput(t *testing.T, name string, w int) Input {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, 2, color.White)); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	return Input{
		Filename: name,
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func TestService_Recognize(t *testing.T) {
	svc := NewService(&widthEngine{})
	in := pngInput(t, "a.png", 10)
	f, _ := in.Open()

	got, err := svc.Recognize(context.Background(), f, "eng")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got != "20 eng" {
		t.Errorf("Recognize = %q, want trimmed text of upscaled image", got)
	}
}

func TestService_RecognizeAllKeepsOrder(t *testing.T) {
	eng := &widthEngine{}
	svc := NewService(eng)

	var inputs []Input
	for i := 1; i <= 9; i++ {
		inputs = append(inputs, pngInput(t, fmt.Sprintf("%d.png", i), MinWidth+i))
	}

	results, err := svc.RecognizeAll(context.Background(), inputs, "eng")
	if err != nil {
		t.Fatalf("RecognizeAll: %v", err)
	}
	if len(results) != len(inputs) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		want := fmt.Sprintf("%d eng", MinWidth+i+1)
		if r.Filename != inputs[i].Filename || r.Text != want {
			t.Errorf("results[%d] = %+v, want %s/%s", i, r, inputs[i].Filename, want)
		}
	}
	if eng.calls.Load() != 9 {
		t.Errorf("engine calls = %d", eng.calls.Load())
	}
}

func TestService_RecognizeAllFails(t *testing.T) {
	svc := NewService(&widthEngine{fail: true})
	_, err := svc.RecognizeAll(context.Background(), []Input{pngInput(t, "x.png", 5)}, "eng")
	var ee *EngineError
	if !errors.As(err, &ee) {
		t.Errorf("error = %v, want *EngineError", err)
	}
}
