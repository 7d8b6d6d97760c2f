// Package ai implements the AI extraction engine over an OpenAI-compatible
// vision endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/extract"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/resilience"
)

// Client calls an OpenAI-compatible chat/completions endpoint with the
// receipt image attached, under a rate limiter and circuit breaker.
type Client struct {
	cfg        common.AIConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	exec       *resilience.Executor
	log        *slog.Logger
}

func NewClient(cfg common.AIConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 2
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		exec:       resilience.NewExecutor("ai.extract", resilience.DefaultConfig(), logger),
		log:        logger,
	}
}

// engineReply is the JSON document the model is asked to produce.
type engineReply struct {
	Text       string                 `json:"text"`
	Confidence float64                `json:"confidence"`
	Fields     *entity.ShipmentFields `json:"fields,omitempty"`
}

// ExtractStructured implements extract.StructuredExtractor. The caller
// enforces the hard timeout through ctx; this method adds rate limiting,
// retry and breaker behavior underneath it.
func (c *Client) ExtractStructured(ctx context.Context, file *entity.SourceFile) (extract.Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	data, err := fileBytes(file)
	if err != nil {
		return extract.Result{}, fmt.Errorf("read image: %w", err)
	}

	c.log.Info("ai.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"file", file.Name,
		"bytes", len(data),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return extract.Result{}, err
	}

	var reply engineReply
	err = c.exec.Execute(ctx, func(ctx context.Context) error {
		r, callErr := c.call(ctx, rid, file, data)
		if callErr != nil {
			return callErr
		}
		reply = r
		return nil
	})
	if err != nil {
		c.log.Error("ai.extract.failed",
			"req_id", rid, "error", err,
			"circuit_open", resilience.IsCircuitOpen(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.Result{}, err
	}

	confidence := int(reply.Confidence)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	c.log.Info("ai.extract.ok",
		"req_id", rid,
		"text_len", len(reply.Text),
		"confidence", confidence,
		"has_fields", reply.Fields != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return extract.Result{
		Text:       reply.Text,
		Confidence: confidence,
		Fields:     reply.Fields,
		Method:     constants.MethodAI,
	}, nil
}

func (c *Client) call(ctx context.Context, rid string, file *entity.SourceFile, data []byte) (engineReply, error) {
	schema := BuildShipmentJSONSchema()
	imageURL := "data:" + file.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(data)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": buildSystemPrompt()},
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": buildUserPrompt(file.Name) + "\n\nReturn ONLY JSON that matches the provided schema."},
					{"type": "image_url", "image_url": map[string]any{"url": imageURL}},
				},
			},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return engineReply{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return engineReply{}, fmt.Errorf("decode response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return engineReply{}, fmt.Errorf("no choices in response")
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	if err := ValidateJSONAgainstSchema(schema, content); err != nil {
		c.log.Warn("ai.extract.schema_validation_failed", "req_id", rid, "error", err)
		return engineReply{}, fmt.Errorf("schema validation failed: %w", err)
	}

	var reply engineReply
	if err := json.Unmarshal(content, &reply); err != nil {
		return engineReply{}, fmt.Errorf("unmarshal reply: %w", err)
	}
	if reply.Text == "" {
		return engineReply{}, fmt.Errorf("empty transcription")
	}
	return reply, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai http error: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if cerr := rc.Close(); cerr != nil {
			c.log.Warn("ai response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ai status %d: %s", resp.StatusCode, truncate(string(raw), 2048))
	}
	return raw, nil
}

func fileBytes(file *entity.SourceFile) ([]byte, error) {
	if len(file.Data) > 0 {
		return file.Data, nil
	}
	if file.Path != "" {
		return os.ReadFile(file.Path)
	}
	return nil, fmt.Errorf("source file has neither data nor path")
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
