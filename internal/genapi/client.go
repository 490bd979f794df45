// Package genapi calls the external image-generation API that turns a user
// photo and a prompt into the poster's character image.
package genapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/youruser/posterapp/internal/config"
)

// Client talks to the generation endpoint. Generation is the one retryable
// network call of the service, so the underlying HTTP client retries with
// backoff before an error reaches the caller.
type Client struct {
	http     *retryablehttp.Client
	endpoint string
	apiKey   string
	model    string
	log      *slog.Logger
}

// New creates a Client from config. Returns nil when no endpoint is
// configured; callers treat a nil client as "generation disabled".
func New(cfg config.GenAPIConfig, log *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		return nil
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	rc.Logger = nil // suppress retryablehttp's default logging
	return &Client{
		http:     rc,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		log:      log,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Image  string `json:"image"`
}

type generateResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate submits the photo and prompt and decodes the returned character
// image. The source dimensions of the result are arbitrary; the composition
// pipeline fits it into the poster layout.
func (c *Client) Generate(ctx context.Context, photo []byte, prompt string) (image.Image, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Image:  base64.StdEncoding.EncodeToString(photo),
	})
	if err != nil {
		return nil, fmt.Errorf("encode generation request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generation API returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("generation response contains no image")
	}

	raw, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode generated image payload: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}

	c.log.Info("character image generated",
		"model", c.model,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
	)
	return img, nil
}
