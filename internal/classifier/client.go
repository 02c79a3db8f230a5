package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"campus_care_backend/internal/config"
	"campus_care_backend/internal/platform/metrics"

	"go.uber.org/zap"
)

const predictAllPath = "/predict/all"

// HTTPClient calls the ML service's combined prediction endpoint.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

var _ Classifier = (*HTTPClient)(nil)

// NewHTTPClient builds a client bounded by the configured ML timeout.
func NewHTTPClient(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *HTTPClient {
	timeout := cfg.MLTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.MLAPIURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
		logger:     logger.Named("Classifier"),
	}
}

// Classify returns the service's prediction, or the fallback on any failure.
func (c *HTTPClient) Classify(ctx context.Context, in Input) *Prediction {
	p, err := c.predictAll(ctx, in)
	if err != nil {
		c.logger.Warn("ML service unavailable, using fallback prediction",
			zap.String("url", c.baseURL+predictAllPath),
			zap.Error(err),
		)
		c.metrics.ClassifierFallback()
		return FallbackPrediction(in.Note)
	}
	return p
}

func (c *HTTPClient) predictAll(ctx context.Context, in Input) (*Prediction, error) {
	body, contentType, err := encodeForm(in)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictAllPath, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ML service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ML service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var wire wirePrediction
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding ML response: %w", err)
	}
	return wire.normalize(), nil
}

// encodeForm writes the multipart body: file (complaint.jpg), note and
// existing_images, the latter two only when non-empty.
func encodeForm(in Input) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="complaint.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(in.Image); err != nil {
		return nil, "", err
	}

	if note := strings.TrimSpace(in.Note); note != "" {
		if err := w.WriteField("note", note); err != nil {
			return nil, "", err
		}
	}
	if len(in.ExistingImages) > 0 {
		existing, err := json.Marshal(in.ExistingImages)
		if err != nil {
			return nil, "", err
		}
		if err := w.WriteField("existing_images", string(existing)); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
