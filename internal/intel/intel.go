// Package intel gathers open-source context for a scenario topic. Intel is
// advisory: a failed lookup degrades to a warning line inside the digest and
// never blocks generation.
package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Provider resolves a research topic into a short textual digest.
type Provider interface {
	Lookup(ctx context.Context, query string) (string, error)
}

// Digest runs the lookup and always returns usable text. Provider failures
// are folded into the digest as a warning line.
func Digest(ctx context.Context, provider Provider, query string) string {
	query = strings.TrimSpace(query)
	if provider == nil || query == "" {
		return ""
	}
	digest, err := provider.Lookup(ctx, query)
	if err != nil {
		return fmt.Sprintf("[intel unavailable: %v]", err)
	}
	return strings.TrimSpace(digest)
}

const defaultInstantAnswerURL = "https://api.duckduckgo.com/"

// InstantAnswerConfig configures the DuckDuckGo instant answer provider.
type InstantAnswerConfig struct {
	// BaseURL overrides the production endpoint, mainly for tests.
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// MaxTopics caps related topics included in the digest. Default 3.
	MaxTopics int
}

type instantAnswerProvider struct {
	cfg InstantAnswerConfig
}

// NewInstantAnswerProvider builds a provider backed by the DuckDuckGo
// instant answer API.
func NewInstantAnswerProvider(cfg InstantAnswerConfig) Provider {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultInstantAnswerURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.MaxTopics <= 0 {
		cfg.MaxTopics = 3
	}
	return &instantAnswerProvider{cfg: cfg}
}

func (p *instantAnswerProvider) Lookup(ctx context.Context, query string) (string, error) {
	u, err := url.Parse(p.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse intel url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build intel request: %w", err)
	}

	res, err := p.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("intel request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("intel request status %d", res.StatusCode)
	}

	var payload struct {
		Abstract      string `json:"Abstract"`
		AbstractText  string `json:"AbstractText"`
		RelatedTopics []struct {
			Text string `json:"Text"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode intel response: %w", err)
	}

	var lines []string
	if abstract := firstNonEmpty(payload.AbstractText, payload.Abstract); abstract != "" {
		lines = append(lines, abstract)
	}
	for _, topic := range payload.RelatedTopics {
		if text := strings.TrimSpace(topic.Text); text != "" {
			lines = append(lines, "- "+text)
		}
		if len(lines) > p.cfg.MaxTopics {
			break
		}
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("no intel found for %q", query)
	}
	return strings.Join(lines, "\n"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
