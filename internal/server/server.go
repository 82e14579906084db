// internal/server/server.go
//
// HTTP transport in front of the conversation engine. The channel gateway
// (WhatsApp webhook relay) posts one inbound message at a time and delivers
// whatever reply text comes back.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"guest-router/internal/common/logger"
	"guest-router/internal/common/observability"
	"guest-router/internal/conversation"
	"guest-router/internal/models"
)

type messageRequest struct {
	ConversationID   string `json:"conversationId"`
	Text             string `json:"text"`
	ChannelMessageID string `json:"channelMessageId"`
	ReceivedAt       string `json:"receivedAt"`
}

type Server struct {
	engine *conversation.Engine
	obs    *observability.Observability
	logger logger.Logger
	mux    *http.ServeMux
}

func New(engine *conversation.Engine, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		engine: engine,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "server"}),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("/v1/messages", s.handleMessage)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ConversationID == "" || req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "conversationId and text are required")
		return
	}

	receivedAt := time.Now().UTC()
	if req.ReceivedAt != "" {
		if ts, err := time.Parse(time.RFC3339, req.ReceivedAt); err == nil {
			receivedAt = ts
		}
	}

	start := time.Now()
	reply, err := s.engine.HandleMessage(r.Context(), models.Message{
		ConversationID:   req.ConversationID,
		Text:             req.Text,
		ChannelMessageID: req.ChannelMessageID,
		ReceivedAt:       receivedAt,
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else if reply.Duplicate {
		outcome = "duplicate"
	}
	s.recordOutcome(r.Context(), outcome, time.Since(start))

	if err != nil {
		s.logger.Error("message handling failed", map[string]interface{}{
			"conversationId": req.ConversationID,
			"error":          err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(reply)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) recordOutcome(ctx context.Context, outcome string, duration time.Duration) {
	if s.obs == nil {
		return
	}
	s.obs.RecordMessageProcessed(ctx, outcome)
	s.obs.RecordMessageDuration(ctx, duration, outcome)
}
