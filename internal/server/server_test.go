// internal/server/server_test.go
package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guest-router/internal/classifier"
	"guest-router/internal/common/logger"
	"guest-router/internal/conversation"
	"guest-router/internal/faq"
	"guest-router/internal/models"
	"guest-router/internal/session"
)

type stubTicketStore struct{}

func (stubTicketStore) Create(_ context.Context, _ *models.Ticket) error {
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewTestLogger(t)
	sessions := session.NewStore(client, log, 15*time.Minute, time.Hour)

	engine := conversation.NewEngine(
		sessions, classifier.NewMockClassifier(), stubTicketStore{},
		faq.NewStaticResponder(), nil, nil, log,
		conversation.Options{},
	)

	return New(engine, nil, log)
}

func TestServer_HandleMessage(t *testing.T) {
	srv := newTestServer(t)

	body := `{"conversationId":"guest-1","text":"necesito toallas","channelMessageId":"wamid.1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "necesito confirmar algunos datos")
	assert.Contains(t, rec.Body.String(), `"awaiting":"identity"`)
}

func TestServer_RejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "{", http.StatusBadRequest},
		{"missing fields", http.MethodPost, `{"text":"hola"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/messages", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
