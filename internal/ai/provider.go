// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai wraps generative-text providers behind a single interface.
// Each provider handles its own HTTP communication and response parsing
// and reports upstream failures as *ProviderError.
package ai

import (
	"context"
	"fmt"
)

// Provider defines the interface that all AI providers must implement.
type Provider interface {
	// Generate sends prompt to the model and returns the generated text.
	// An empty string with a nil error means the model produced no text.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the provider identifier (e.g. "gemini").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ProviderError is an error reported by the upstream API. StatusCode is
// the upstream HTTP status, or 0 when the provider could not be reached.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
