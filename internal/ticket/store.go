// internal/ticket/store.go
//
// Durable ticket persistence. A ticket row and its initial status row are
// written in one transaction so a half-written ticket can never be claimed
// by staff; the audit log row is non-critical.
package ticket

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "guest-router/internal/common/errors"
	"guest-router/internal/common/logger"
	"guest-router/internal/models"
)

const initialStatus = "PENDIENTE_APROBACION"

// Sentinel errors for the persistence boundary. errors.Is matches on the
// error code.
var (
	ErrTicketInsertFailed     error = &apperrors.StandardError{Code: apperrors.ErrCodePersistenceFailed, Message: "Ticket persistence failed"}
	ErrInvalidRoutingMetadata error = &apperrors.StandardError{Code: apperrors.ErrCodeInvalidRoutingMetadata, Message: "Routing metadata invariant violated"}
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "ticket-store"}),
	}
}

// Create persists the ticket with its full routing provenance. The routing
// metadata is validated first: a ticket without provenance must never reach
// the database.
func (s *Store) Create(ctx context.Context, t *models.Ticket) error {
	if err := t.Routing.Valid(); err != nil {
		return apperrors.NewInvalidRoutingMetadataError(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewPersistenceFailedError(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	createdAt := t.CreatedAt.UTC().Format(time.RFC3339)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tickets (
			id, area, detalle, ubicacion, huesped_nombre, canal_origen,
			routing_source, routing_reason, routing_confidence, routing_version,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID,
		t.Area,
		t.Detalle,
		t.Ubicacion,
		t.HuespedNombre,
		t.CanalOrigen,
		t.Routing.Source,
		t.Routing.Reason,
		t.Routing.Confidence,
		t.Routing.Version,
		createdAt,
	)
	if err != nil {
		return apperrors.NewPersistenceFailedError(fmt.Errorf("insert ticket: %w", err))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ticket_status_history (ticket_id, status, created_at)
		VALUES ($1, $2, $3)`,
		t.ID, initialStatus, createdAt,
	)
	if err != nil {
		return apperrors.NewPersistenceFailedError(fmt.Errorf("insert status: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewPersistenceFailedError(fmt.Errorf("commit: %w", err))
	}

	s.writeAuditLog(ctx, t, createdAt)

	s.logger.Info("ticket created", map[string]interface{}{
		"ticketId":          t.ID,
		"area":              t.Area,
		"routingSource":     t.Routing.Source,
		"routingConfidence": t.Routing.Confidence,
	})
	return nil
}

// writeAuditLog records the routing provenance for offline analysis. Failure
// is logged, never propagated: the ticket is already committed.
func (s *Store) writeAuditLog(ctx context.Context, t *models.Ticket, createdAt string) {
	details, err := json.Marshal(map[string]interface{}{
		"area":              t.Area,
		"routingSource":     t.Routing.Source,
		"routingReason":     t.Routing.Reason,
		"routingConfidence": t.Routing.Confidence,
		"routingVersion":    t.Routing.Version,
	})
	if err != nil {
		details = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"ticket_created",
		"ticket",
		t.ID,
		details,
		createdAt,
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":    err,
			"ticketId": t.ID,
		})
	}
}
