package nano

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/digkill/PhotoSessionBot/internal/config"
	"github.com/digkill/PhotoSessionBot/internal/models"
)

// Client calls the Nano Banana generation API. The response wire format is
// provider-defined, so calls return a loosely typed Response to be decoded
// with FirstImage.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	fallbackModel string
	httpClient    *http.Client
	log           *slog.Logger
}

// PhotosessionRequest carries everything the provider needs for one shoot.
// FacePaths must point at readable local files.
type PhotosessionRequest struct {
	Style       string
	Prompt      string
	Orientation models.Orientation
	FacePaths   []string
}

func NewClient(cfg config.Config, log *slog.Logger) *Client {
	timeout := cfg.GenerationTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		apiKey:        cfg.NanoBananaAPIKey,
		baseURL:       strings.TrimRight(cfg.NanoBananaBaseURL, "/"),
		model:         cfg.NanoBananaModel,
		fallbackModel: cfg.NanoBananaFallback,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GeneratePhotosession requests one styled image composed from the reference
// faces and the optional scene description.
func (c *Client) GeneratePhotosession(ctx context.Context, req PhotosessionRequest) (Response, error) {
	parts := []map[string]any{
		{"text": photosessionPrompt(req)},
	}
	for _, path := range req.FacePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read face file %s: %w", path, err)
		}
		parts = append(parts, map[string]any{
			"inline_data": map[string]any{
				"mime_type": "image/jpeg",
				"data":      base64.StdEncoding.EncodeToString(data),
			},
		})
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": parts},
		},
		"generation_config": map[string]any{
			"response_modalities": []string{"IMAGE"},
		},
	}

	return c.postWithFallback(ctx, body)
}

// GeneratePrompt requests a free-form image from a text prompt, optionally
// wrapped into a named template.
func (c *Client) GeneratePrompt(ctx context.Context, prompt, template string) (Response, error) {
	text := prompt
	if template != "" {
		text = fmt.Sprintf("%s style. %s", template, prompt)
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": text}}},
		},
		"generation_config": map[string]any{
			"response_modalities": []string{"IMAGE"},
		},
	}

	return c.postWithFallback(ctx, body)
}

// postWithFallback tries the primary model and, when a fallback model is
// configured, retries the same payload once against it.
func (c *Client) postWithFallback(ctx context.Context, body map[string]any) (Response, error) {
	resp, err := c.post(ctx, c.model, body)
	if err == nil {
		return resp, nil
	}
	if c.fallbackModel == "" || c.fallbackModel == c.model {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, err
	}

	c.log.Warn("primary model failed, retrying with fallback", "model", c.model, "fallback", c.fallbackModel, "err", err)
	resp, fallbackErr := c.post(ctx, c.fallbackModel, body)
	if fallbackErr != nil {
		return nil, fmt.Errorf("fallback model: %w (primary: %v)", fallbackErr, err)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, model string, body map[string]any) (Response, error) {
	baseURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	endpoint, err := url.Parse(fmt.Sprintf("/v1beta/models/%s:generateContent", model))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	fullURL := baseURL.ResolveReference(endpoint).String()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post generation: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		c.log.Error("generation request failed", "status", resp.StatusCode, "model", model, "body", truncateBody(rawBody))
		return nil, fmt.Errorf("generation error: status=%d model=%s body=%s", resp.StatusCode, model, truncateBody(rawBody))
	}

	var decoded Response
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w (body=%s)", err, truncateBody(rawBody))
	}
	return decoded, nil
}

func photosessionPrompt(req PhotosessionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Professional photosession in the %q style, %s orientation.", req.Style, req.Orientation)
	b.WriteString(" Keep the faces from the reference photos recognizable.")
	if req.Prompt != "" {
		b.WriteString(" Scene: ")
		b.WriteString(req.Prompt)
	}
	return b.String()
}

func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
