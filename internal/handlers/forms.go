package handlers

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"
)

// maxUploadMemory is the multipart size kept in memory before spilling
// file parts to disk.
const maxUploadMemory = 32 << 20

var errInvalidInteger = errors.New("not an integer")

// formInput is a write request normalized across JSON, multipart and
// urlencoded bodies. Blank values count as absent.
type formInput struct {
	values    map[string]string
	thumbnail *multipart.FileHeader
}

// readForm parses the request body according to its Content-Type.
func readForm(r *http.Request) (*formInput, error) {
	in := &formInput{values: map[string]string{}}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var raw map[string]any
		if err := render.DecodeJSON(r.Body, &raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		for k, v := range raw {
			switch v := v.(type) {
			case string:
				in.values[k] = v
			case float64:
				in.values[k] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				in.values[k] = strconv.FormatBool(v)
			}
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return nil, fmt.Errorf("parse multipart: %w", err)
		}
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				in.values[k] = vs[0]
			}
		}
		if files := r.MultipartForm.File["thumbnail"]; len(files) > 0 {
			in.thumbnail = files[0]
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				in.values[k] = vs[0]
			}
		}
	}
	return in, nil
}

// str returns the value of key, or nil when it is absent or blank.
func (in *formInput) str(key string) *string {
	v, ok := in.values[key]
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

// int64 returns key parsed as an integer, nil when absent or blank.
func (in *formInput) int64(key string) (*int64, error) {
	v := in.str(key)
	if v == nil {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*v), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, errInvalidInteger)
	}
	return &n, nil
}

// has reports whether every key carries a non-blank value.
func (in *formInput) has(keys ...string) bool {
	for _, k := range keys {
		if in.str(k) == nil {
			return false
		}
	}
	return true
}
