// internal/session/store.go
//
// Conversation session storage on Redis. Sessions are JSON blobs with a
// sliding TTL so an idle conversation expires back to a fresh state, and
// channel message ids are remembered for duplicate-delivery detection.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "guest-router/internal/common/errors"
	"guest-router/internal/common/logger"
	"guest-router/internal/models"
)

const (
	sessionKeyPrefix = "session:"
	seenKeyPrefix    = "seen:"
)

// Store reads and writes conversation sessions.
type Store struct {
	client     redis.Cmdable
	logger     logger.Logger
	sessionTTL time.Duration
	dedupTTL   time.Duration
}

func NewStore(client redis.Cmdable, log logger.Logger, sessionTTL, dedupTTL time.Duration) *Store {
	return &Store{
		client:     client,
		logger:     log.WithFields(map[string]interface{}{"component": "session-store"}),
		sessionTTL: sessionTTL,
		dedupTTL:   dedupTTL,
	}
}

// Get returns the session for a conversation, or nil when none exists or it
// has expired.
func (s *Store) Get(ctx context.Context, conversationID string) (*models.ConversationSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+conversationID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(fmt.Errorf("get session: %w", err))
	}

	var session models.ConversationSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		// A corrupt session is unrecoverable; treat it as expired.
		s.logger.Warn("discarding corrupt session", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
		return nil, nil
	}

	return &session, nil
}

// Save writes the session and resets its TTL.
func (s *Store) Save(ctx context.Context, session *models.ConversationSession) error {
	session.LastUpdatedAt = time.Now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+session.ConversationID, data, s.sessionTTL).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(fmt.Errorf("save session: %w", err))
	}
	return nil
}

// Delete removes the session, ending the conversation.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+conversationID).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(fmt.Errorf("delete session: %w", err))
	}
	return nil
}

// Seen reports whether a channel message id has already been fully handled.
// Checked before processing so a redelivery of a message that previously
// failed mid-flight is processed again, not dropped.
func (s *Store) Seen(ctx context.Context, conversationID, channelMessageID string) (bool, error) {
	if channelMessageID == "" {
		return false, nil
	}

	n, err := s.client.Exists(ctx, seenKey(conversationID, channelMessageID)).Result()
	if err != nil {
		return false, apperrors.NewSessionStoreFailedError(fmt.Errorf("check seen: %w", err))
	}
	return n > 0, nil
}

// MarkSeen records a channel message id once its message has been handled.
// The SETNX result makes redelivery detection atomic across instances.
func (s *Store) MarkSeen(ctx context.Context, conversationID, channelMessageID string) (duplicate bool, err error) {
	if channelMessageID == "" {
		return false, nil
	}

	set, err := s.client.SetNX(ctx, seenKey(conversationID, channelMessageID), "1", s.dedupTTL).Result()
	if err != nil {
		return false, apperrors.NewSessionStoreFailedError(fmt.Errorf("mark seen: %w", err))
	}
	return !set, nil
}

func seenKey(conversationID, channelMessageID string) string {
	return fmt.Sprintf("%s%s:%s", seenKeyPrefix, conversationID, channelMessageID)
}
