// Package titlegen produces short display titles for submitted requests by
// asking a local Ollama model to summarize the free-text description.
// Callers must treat failures as non-fatal and fall back to the request id.
package titlegen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"campus-backend/internal/config"
)

const (
	generateTimeout = 8 * time.Second
	maxTitleLen     = 80
)

type Generator struct {
	api   *api.Client
	model string
}

func NewGenerator(cfg *config.Config) (*Generator, error) {
	u, err := url.ParseRequestURI(cfg.Ollama.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}

	httpClient := &http.Client{Timeout: generateTimeout}
	return &Generator{
		api:   api.NewClient(u, httpClient),
		model: cfg.Ollama.Model,
	}, nil
}

// GenerateTitle asks the model for a short title describing the request.
// Returns an error when the model is unreachable, times out, or produces an
// empty answer; the caller substitutes the request id.
func (g *Generator) GenerateTitle(ctx context.Context, requestType, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Write a title of at most eight words for a %s request with this description. "+
			"Reply with the title only, no quotes.\n\n%s",
		strings.ToLower(requestType), description)

	var sb strings.Builder
	stream := false
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: &stream,
	}

	err := g.api.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("title generation: %w", err)
	}

	title := sanitize(sb.String())
	if title == "" {
		return "", fmt.Errorf("title generation: empty response from model %s", g.model)
	}
	return title, nil
}

// sanitize trims quotes and whitespace the model tends to wrap titles in,
// collapses it to a single line and caps the length.
func sanitize(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.Trim(title, `"'`)
	title = strings.TrimSpace(title)
	if len(title) > maxTitleLen {
		title = strings.TrimSpace(title[:maxTitleLen])
	}
	return title
}
