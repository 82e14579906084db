// internal/classifier/http.go
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"guest-router/internal/common/config"
	apperrors "guest-router/internal/common/errors"
	httpclient "guest-router/internal/common/http"
	"guest-router/internal/common/logger"
	"guest-router/internal/models"
)

// responseSchema validates the classifier service payload before it is
// trusted. An out-of-contract response is treated as a classifier error, not
// silently coerced.
var responseSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"intent", "confidence"},
	"properties": map[string]interface{}{
		"intent": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{IntentTicketRequest, IntentNotUnderstood},
		},
		"area": map[string]interface{}{
			"type": "string",
		},
		"confidence": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
		"reason": map[string]interface{}{
			"type": "string",
		},
	},
}

// HTTPClassifier calls the external intent service over HTTP.
type HTTPClassifier struct {
	config *config.ClassifierConfig
	client *httpclient.Client
	logger logger.Logger
}

func NewHTTPClassifier(cfg *config.ClassifierConfig, log logger.Logger) *HTTPClassifier {
	return &HTTPClassifier{
		config: cfg,
		client: httpclient.NewClient(cfg.GetTimeout()),
		logger: log.WithFields(map[string]interface{}{
			"component": "classifier",
		}),
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string, roomHint string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.GetTimeout())
	defer cancel()

	requestBody := map[string]interface{}{
		"text": text,
	}
	if roomHint != "" {
		requestBody["room_hint"] = roomHint
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewClassifierTimeoutError(ctx.Err().Error())
			}
		}

		// A fresh request per attempt: the body reader is consumed by Do.
		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/v1/classify", bytes.NewBuffer(body))
		if err != nil {
			return nil, apperrors.NewClassifierError(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, apperrors.NewClassifierTimeoutError("deadline exceeded during call")
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewClassifierTimeoutError("deadline exceeded after retries")
		}
		return nil, apperrors.NewClassifierError(lastErr)
	}
	if resp == nil {
		return nil, apperrors.NewClassifierError(fmt.Errorf("no successful response after retries"))
	}
	defer resp.Body.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperrors.NewClassifierError(fmt.Errorf("decode error: %w", err))
	}

	if err := validateResponse(raw); err != nil {
		c.logger.Warn("classifier response rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, apperrors.NewClassifierError(err)
	}

	result := rawToResult(raw)
	if result.Area != "" && !result.Area.IsValid() {
		return nil, apperrors.NewClassifierError(fmt.Errorf("unknown area %q", result.Area))
	}

	return result, nil
}

func validateResponse(data map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(responseSchema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("response validation failed: %v", errs)
	}

	return nil
}

func rawToResult(raw map[string]interface{}) *Result {
	result := &Result{}
	if v, ok := raw["intent"].(string); ok {
		result.Intent = v
	}
	if v, ok := raw["area"].(string); ok {
		result.Area = models.Area(v)
	}
	if v, ok := raw["confidence"].(float64); ok {
		result.Confidence = v
	}
	if v, ok := raw["reason"].(string); ok {
		result.Reason = v
	}
	return result
}
