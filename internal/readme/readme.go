// Package readme generates README drafts for repositories. Generation is
// delegated to an external text completion API when one is configured, with
// a deterministic template fallback so the feature degrades instead of
// failing.
package readme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Generator produces a README body for a repository.
type Generator interface {
	Generate(ctx context.Context, name, description string) (string, error)
}

// HTTPGenerator calls a text completion endpoint. The request and response
// shapes are deliberately minimal: we send the repository name and
// description, we get back a text body.
type HTTPGenerator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPGenerator creates a generator against the given endpoint. The API
// key is optional; when set it is sent as a bearer token.
func NewHTTPGenerator(endpoint, apiKey string) *HTTPGenerator {
	return &HTTPGenerator{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type generateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate posts the repository metadata to the completion endpoint and
// returns the generated text.
func (g *HTTPGenerator) Generate(ctx context.Context, name, description string) (string, error) {
	body, err := json.Marshal(generateRequest{Name: name, Description: description})
	if err != nil {
		return "", fmt.Errorf("readme: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("readme: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("readme: calling generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the log, then discard.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("readme: generator returned %d: %s", resp.StatusCode, string(snippet))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("readme: decoding response: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("readme: generator returned empty text")
	}
	return out.Text, nil
}

// Fallback renders the templated README used when no generator is
// configured or the generator fails.
func Fallback(name, description string) string {
	if strings.TrimSpace(description) == "" {
		description = "A new project."
	}
	return fmt.Sprintf(`# %s

%s

## Introduction

This repository contains the source for **%s**. %s

## Features

- Clean, modular design
- Easy to set up and extend
- Actively maintained

## Getting Started

Clone the repository and follow the instructions below:

`+"```bash\ngit clone <repository-url>\ncd %s\n```"+`

## License

MIT
`, name, description, name, description, name)
}

// Service wraps a Generator so that README generation never fails: any
// generator error falls back to the template. A nil generator means no
// endpoint was configured and the template is used directly.
type Service struct {
	generator Generator
	logger    *slog.Logger
}

// NewService creates a readme Service. generator may be nil.
func NewService(generator Generator, logger *slog.Logger) *Service {
	return &Service{generator: generator, logger: logger}
}

// Generate returns a README body for the repository. Never returns an
// error.
func (s *Service) Generate(ctx context.Context, name, description string) string {
	if s.generator == nil {
		return Fallback(name, description)
	}

	text, err := s.generator.Generate(ctx, name, description)
	if err != nil {
		s.logger.Warn("readme generation failed, using template",
			slog.String("repo", name),
			slog.String("error", err.Error()),
		)
		return Fallback(name, description)
	}
	return text
}
