// internal/classifier/http_test.go
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guest-router/internal/common/config"
	"guest-router/internal/common/logger"
	"guest-router/internal/models"
)

func newTestClassifier(t *testing.T, handler http.HandlerFunc) (*HTTPClassifier, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.ClassifierConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    2000,
		MaxRetries: 1,
	}
	return NewHTTPClassifier(cfg, logger.NewTestLogger(t)), server
}

func TestHTTPClassifier_Success(t *testing.T) {
	c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/classify", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "se me quedo la llave adentro", body["text"])
		assert.Equal(t, "512", body["room_hint"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"intent":     "ticket_request",
			"area":       "RECEPCION",
			"confidence": 0.82,
			"reason":     "Lockout",
		})
	})

	result, err := c.Classify(context.Background(), "se me quedo la llave adentro", "512")
	require.NoError(t, err)
	assert.Equal(t, IntentTicketRequest, result.Intent)
	assert.Equal(t, models.AreaRecepcion, result.Area)
	assert.InDelta(t, 0.82, result.Confidence, 0.001)
}

func TestHTTPClassifier_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"intent":     "not_understood",
			"confidence": 0.1,
		})
	})

	result, err := c.Classify(context.Background(), "hola", "")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, IntentNotUnderstood, result.Intent)
}

func TestHTTPClassifier_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	cfg := &config.ClassifierConfig{
		BaseURL: server.URL,
		Timeout: 50,
	}
	c := NewHTTPClassifier(cfg, logger.NewTestLogger(t))

	_, err := c.Classify(context.Background(), "hola", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClassifierTimeout))
}

func TestHTTPClassifier_InvalidResponseRejected(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing intent", map[string]interface{}{"confidence": 0.5}},
		{"unknown intent", map[string]interface{}{"intent": "order_pizza", "confidence": 0.5}},
		{"confidence out of range", map[string]interface{}{"intent": "ticket_request", "confidence": 1.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.body)
			})

			_, err := c.Classify(context.Background(), "hola", "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrClassifierFailed))
		})
	}
}

func TestHTTPClassifier_UnknownAreaRejected(t *testing.T) {
	c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"intent":     "ticket_request",
			"area":       "SPA",
			"confidence": 0.9,
		})
	})

	_, err := c.Classify(context.Background(), "quiero un masaje", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClassifierFailed))
}
