// internal/classifier/client.go
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"

	"signal-engine/internal/common/config"
	"signal-engine/internal/common/errors"
	"signal-engine/internal/common/http"
	"signal-engine/internal/common/logger"
)

// Classification is the structured answer of the external classifier.
type Classification struct {
	People    []string `json:"people"`
	Countries []string `json:"countries"`
	Orgs      []string `json:"organizations"`
	Topics    []string `json:"topics"`
	Category  string   `json:"category"`
}

// Client calls the external entity classification service. The engine
// functions without it at reduced precision, so every failure here maps
// to a recoverable StandardError.
type Client struct {
	config     config.ClassifierConfig
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.ClassifierConfig, log logger.Logger) *Client {
	return &Client{
		config:     cfg,
		httpClient: http.NewClient(config.GetDuration(cfg.Timeout)),
		logger:     log.WithFields(map[string]interface{}{"component": "classifier"}),
	}
}

// Enabled reports whether a classifier endpoint is configured.
func (c *Client) Enabled() bool {
	return c.config.BaseURL != ""
}

type classifyRequest struct {
	Text string `json:"text"`
}

// Classify requests structured entity extraction for one text.
func (c *Client) Classify(ctx context.Context, text string) (*Classification, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, errors.NewClassifierBadResponseError(err.Error())
	}

	req, err := nethttp.NewRequest(nethttp.MethodPost, c.config.BaseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewClassifierUnavailableError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewClassifierTimeoutError(c.config.Timeout)
		}
		return nil, errors.NewClassifierUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.NewClassifierBadResponseError(
			fmt.Sprintf("status %d: %s", resp.StatusCode, string(data)))
	}

	var result Classification
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewClassifierBadResponseError(err.Error())
	}

	return &result, nil
}
