// internal/conversation/ticket.go
package conversation

import (
	"time"

	"github.com/google/uuid"

	"guest-router/internal/models"
)

// assembleTicket builds the final ticket from a confirmed session. The
// confirmed room number is the source of truth; ExtractedRoom was only ever
// a hint.
func assembleTicket(sess *models.ConversationSession, now time.Time) *models.Ticket {
	return &models.Ticket{
		ID:            uuid.New().String(),
		Area:          sess.Decision.Area,
		Detalle:       sess.PendingDetail,
		Ubicacion:     sess.RoomNumber,
		HuespedNombre: sess.GuestName,
		CanalOrigen:   models.CanalHuesped,
		Routing:       *sess.Decision,
		CreatedAt:     now,
	}
}
