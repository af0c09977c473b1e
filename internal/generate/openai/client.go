// Package openai implements the generate.Client boundary against the OpenAI
// responses endpoint. It speaks raw HTTP; no SDK.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/sandtable-sim/sandtable/internal/errors"
	"github.com/sandtable-sim/sandtable/internal/generate"
	"github.com/sandtable-sim/sandtable/internal/scenario"
)

const defaultResponsesURL = "https://api.openai.com/v1/responses"

// Config carries the credentials and endpoint for the responses API.
type Config struct {
	// APIKey is required and is sent only as an Authorization header.
	APIKey string
	// ResponsesURL overrides the production endpoint, mainly for tests.
	ResponsesURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client calls the responses endpoint with structured JSON output enabled.
type Client struct {
	cfg Config
}

// New builds a responses-endpoint client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New(errors.CodeConfigMissingAPIKey, "an OpenAI API key is required")
	}
	if strings.TrimSpace(cfg.ResponsesURL) == "" {
		cfg.ResponsesURL = defaultResponsesURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client{cfg: cfg}, nil
}

// GenerateScenario requests a full scenario document.
func (c *Client) GenerateScenario(ctx context.Context, req generate.Request) (*scenario.Scenario, error) {
	raw, err := c.invoke(ctx, req, "tactical_scenario", scenarioSchema)
	if err != nil {
		return nil, err
	}
	return scenario.Unmarshal(raw)
}

// GenerateExtension requests a continuation frame batch.
func (c *Client) GenerateExtension(ctx context.Context, req generate.Request) (*scenario.Extension, error) {
	raw, err := c.invoke(ctx, req, "scenario_extension", extensionSchema)
	if err != nil {
		return nil, err
	}
	return scenario.UnmarshalExtension(raw)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) invoke(ctx context.Context, req generate.Request, schemaName string, schema map[string]any) ([]byte, error) {
	input := []message{{Role: "system", Content: req.SystemInstruction}}
	input = append(input, message{Role: "user", Content: req.UserInstruction})
	for _, turn := range req.History {
		input = append(input, message{Role: turn.Role, Content: turn.Content})
	}

	requestBody, err := json.Marshal(map[string]any{
		"model": req.Model,
		"input": input,
		"text": map[string]any{
			"format": map[string]any{
				"type":   "json_schema",
				"name":   schemaName,
				"strict": true,
				"schema": schema,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeGeneratorBackend, "marshal generation request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ResponsesURL, bytes.NewReader(requestBody))
	if err != nil {
		return nil, errors.Wrap(errors.CodeGeneratorBackend, "build generation request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// The key travels only as an Authorization header; it never appears in
	// errors or telemetry.
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(errors.CodeGeneratorUnreachable, "generation request failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, statusError(res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(errors.CodeScenarioMalformed, "decode generation response", err)
	}
	outputText := strings.TrimSpace(payload.OutputText)
	if outputText == "" {
		for _, item := range payload.Output {
			for _, content := range item.Content {
				if strings.TrimSpace(content.Text) != "" {
					outputText = strings.TrimSpace(content.Text)
					break
				}
			}
			if outputText != "" {
				break
			}
		}
	}
	if outputText == "" {
		return nil, errors.New(errors.CodeScenarioMalformed, "generation response missing output text")
	}
	return []byte(outputText), nil
}

func statusError(status int, body string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.Newf(errors.CodeGeneratorAuth, "generation request status %d: %s", status, body)
	case status == http.StatusTooManyRequests:
		return errors.Newf(errors.CodeGeneratorRateLimited, "generation request status %d: %s", status, body)
	default:
		return errors.Newf(errors.CodeGeneratorBackend, "generation request status %d: %s", status, body)
	}
}
