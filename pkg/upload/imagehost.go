// Package upload sends embedded images to the external image host.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/rentalshop/pkg/config"
	"go.uber.org/zap"
)

// ImageHost posts base64 image data and returns the hosted URL.
type ImageHost struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

type hostResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewImageHost returns nil when no endpoint is configured.
func NewImageHost(cfg *config.UploadConfig, logger *zap.Logger) *ImageHost {
	if cfg.Endpoint == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ImageHost{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Upload accepts a data URI or bare base64 payload.
func (h *ImageHost) Upload(ctx context.Context, data string) (string, error) {
	payload := data
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	if payload == "" {
		return "", fmt.Errorf("empty image payload")
	}

	target, err := url.Parse(h.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid image host endpoint: %w", err)
	}
	q := target.Query()
	q.Set("key", h.apiKey)
	target.RawQuery = q.Encode()

	form := url.Values{"image": {payload}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image host request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read image host response: %w", err)
	}

	var out hostResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("invalid image host response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success || out.Data.URL == "" {
		msg := out.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("image host rejected upload: %s", msg)
	}

	h.logger.Debug("Image uploaded",
		zap.String("url", out.Data.URL),
		zap.Duration("latency", time.Since(start)))
	return out.Data.URL, nil
}
