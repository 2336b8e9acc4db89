// Package ollama implementa los ports de LLM contra un runtime Ollama
// local (misma API HTTP que usaba el stack autogen/sentence-transformers
// que reemplaza).
package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prinik8/AIcare/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("ollama: not configured")
	ErrEmptyResponse = errors.New("ollama: empty response")
)

type Config struct {
	BaseURL    string
	Model      string // generación (default llama3)
	EmbedModel string // embeddings (default nomic-embed-text)
	Timeout    time.Duration
}

type Client struct {
	http       *httpclient.Client
	model      string
	embedModel string
	dims       atomic.Int32
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "nomic-embed-text"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}

	return &Client{
		http:       hc,
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
	}, nil
}

// IsConfigured reporta si hay un client usable (nil-safe, para que los
// agents puedan degradar a sus resúmenes fijos).
func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("ollama: empty prompt")
	}

	var out generateResponse
	err := c.http.PostJSON(ctx, "/api/generate", generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("ollama: empty text")
	}

	var out embedResponse
	err := c.http.PostJSON(ctx, "/api/embeddings", embedRequest{
		Model:  c.embedModel,
		Prompt: text,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	if len(out.Embedding) == 0 {
		return nil, ErrEmptyResponse
	}

	// La dimensión se aprende del primer embedding exitoso. El client se
	// comparte entre requests, por eso el CAS.
	c.dims.CompareAndSwap(0, int32(len(out.Embedding)))
	return out.Embedding, nil
}

func (c *Client) Dimensions() int {
	if c == nil {
		return 0
	}
	return int(c.dims.Load())
}

// Healthy pega a /api/tags, el endpoint más barato del runtime.
func (c *Client) Healthy(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if err := c.http.GetJSON(ctx, "/api/tags", nil); err != nil {
		return fmt.Errorf("ollama health: %w", err)
	}
	return nil
}
