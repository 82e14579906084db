// internal/conversation/replies.go
//
// Guest-facing copy. These blocks are part of the observable contract with
// the channel transport and are asserted verbatim in tests; do not reword
// without updating the channel team.
package conversation

import (
	"fmt"

	"guest-router/internal/models"
)

const identityPrompt = "Para poder ayudarte mejor, necesito confirmar algunos datos:\n\n" +
	"📝 ¿Cuál es tu nombre completo?\n" +
	"🏨 ¿En qué número de habitación te encuentras?"

const confirmationRestart = "Sin problema. Volvamos a empezar:\n\n" +
	"📝 ¿Cuál es tu nombre completo?\n" +
	"🏨 ¿En qué número de habitación te encuentras?"

const clarificationReprompt = "No entendí tu respuesta. Por favor responde con un número del 1 al 4:\n\n" +
	"1️⃣ Mantenimiento\n" +
	"2️⃣ Housekeeping\n" +
	"3️⃣ Recepción\n" +
	"4️⃣ Otro (queja/gerencia)"

const ticketRetryPrompt = "He tenido un problema al registrar tu solicitud. " +
	"¿Puedes confirmar nuevamente? (Sí/No)"

const cancelReply = "He cancelado tu solicitud. Si necesitas algo más, escríbeme cuando quieras."

const faqFollowUp = "¿Puedo ayudarte con algo más durante tu estadía?"

func clarificationMenu(detail string) string {
	return fmt.Sprintf(
		"Entiendo que necesitas ayuda con: *%s*\n\n"+
			"Para asignarlo correctamente, ¿es sobre:\n\n"+
			"1️⃣ *Mantenimiento* (técnico/AC/agua/luz)\n"+
			"2️⃣ *Housekeeping* (limpieza/toallas/amenities)\n"+
			"3️⃣ *Recepción* (pagos/reservas/info)\n"+
			"4️⃣ *Otro* (queja/gerencia)\n\n"+
			"Responde con el número (1-4).",
		detail,
	)
}

func escalationNotice(detail string) string {
	return fmt.Sprintf(
		"Voy a derivar tu solicitud a *Gerencia* para que te ayuden directamente con: %s\n\n%s",
		detail, identityPrompt,
	)
}

func confirmationSummary(name string, area models.Area, detail, room string) string {
	return fmt.Sprintf(
		"Perfecto, %s. Voy a notificar al equipo de %s sobre:\n\n"+
			"📝 %s\n"+
			"🏨 Habitación %s\n\n"+
			"¿Confirmas? (Sí/No)",
		name, area.DisplayName(), detail, room,
	)
}

func ticketCreatedReply(area models.Area, room string) string {
	return fmt.Sprintf(
		"¡Listo! Ya notifiqué al equipo de %s sobre tu solicitud "+
			"en la habitación %s. Te avisaré cuando esté resuelto. ✅",
		area.DisplayName(), room,
	)
}

func missingIdentityPrompt(hasName, hasRoom bool) string {
	var missing string
	switch {
	case !hasName && !hasRoom:
		missing = "nombre y número de habitación"
	case !hasName:
		missing = "nombre"
	default:
		missing = "número de habitación"
	}
	return fmt.Sprintf("Gracias, pero aún necesito tu %s. ¿Puedes proporcionarlo?", missing)
}
