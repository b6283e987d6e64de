// internal/common/synthesis/client.go
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"narrative-workers/internal/common/logger"
)

var (
	ErrSynthesisTimeout = errors.New("SYNTHESIS_TIMEOUT")
	ErrSynthesisFailed  = errors.New("SYNTHESIS_FAILED")
)

// Request is one structured-generation request against the synthesis service.
type Request struct {
	Prompt       string                 `json:"prompt"`
	SystemPrompt string                 `json:"systemPrompt,omitempty"`
	Context      map[string]interface{} `json:"context,omitempty"`
	// SchemaName selects the target JSON schema the service is asked to
	// produce ("core_narrative" or "populated_content").
	SchemaName  string  `json:"schema"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Response carries the raw JSON payload returned by the service. Callers
// must schema-validate before trusting it.
type Response struct {
	Content    json.RawMessage `json:"content"`
	TokensUsed int             `json:"tokensUsed"`
}

// TextSynthesizer is the external text synthesis service. Every call is
// fallible; callers own the deterministic fallback.
type TextSynthesizer interface {
	SynthesizeJSON(ctx context.Context, req *Request) (*Response, error)
}

// Config holds the synthesis HTTP client settings.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

// Client calls the platform GenAI gateway over HTTP.
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		// No HTTP client timeout - rely only on context
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"service": "synthesis"}),
	}
}

// SynthesizeJSON posts the request to the gateway and returns the raw JSON
// content. Non-OK statuses are retried with exponential backoff; a context
// deadline maps to ErrSynthesisTimeout.
func (c *Client) SynthesizeJSON(ctx context.Context, req *Request) (*Response, error) {
	if req.MaxTokens == 0 {
		req.MaxTokens = c.config.MaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = c.config.Temperature
	}

	requestBody := map[string]interface{}{
		"prompt":        req.Prompt,
		"system_prompt": req.SystemPrompt,
		"context":       req.Context,
		"schema":        req.SchemaName,
		"format":        "json",
		"max_tokens":    req.MaxTokens,
		"temperature":   req.Temperature,
	}
	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between attempts
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrSynthesisTimeout
			}
		}

		// The body reader is consumed per attempt, so build a fresh request
		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/api/ai/generate", bytes.NewBuffer(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(httpReq)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrSynthesisTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrSynthesisTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrSynthesisFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Content    json.RawMessage `json:"content"`
		TokensUsed int             `json:"tokens_used"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrSynthesisFailed, err)
	}

	if len(apiResponse.Content) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrSynthesisFailed)
	}

	c.logger.Debug("synthesis completed", map[string]interface{}{
		"schema":     req.SchemaName,
		"tokensUsed": apiResponse.TokensUsed,
	})

	return &Response{
		Content:    apiResponse.Content,
		TokensUsed: apiResponse.TokensUsed,
	}, nil
}
