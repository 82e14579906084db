// internal/conversation/engine_test.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guest-router/internal/classifier"
	"guest-router/internal/common/logger"
	"guest-router/internal/faq"
	"guest-router/internal/models"
	"guest-router/internal/session"
)

type fakeTicketStore struct {
	tickets []*models.Ticket
	err     error
}

func (f *fakeTicketStore) Create(_ context.Context, t *models.Ticket) error {
	if f.err != nil {
		return f.err
	}
	f.tickets = append(f.tickets, t)
	return nil
}

type testHarness struct {
	engine   *Engine
	sessions *session.Store
	tickets  *fakeTicketStore
	fallback *classifier.MockClassifier
	msgSeq   int
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewTestLogger(t)
	sessions := session.NewStore(client, log, 15*time.Minute, time.Hour)
	tickets := &fakeTicketStore{}
	fallback := classifier.NewMockClassifier()

	engine := NewEngine(
		sessions, fallback, tickets, faq.NewStaticResponder(), nil, nil, log,
		Options{ConfidenceThreshold: 0.65, ClarifyMaxRetries: 3},
	)

	return &testHarness{engine: engine, sessions: sessions, tickets: tickets, fallback: fallback}
}

func (h *testHarness) send(t *testing.T, conversationID, text string) *models.Reply {
	t.Helper()
	h.msgSeq++
	reply, err := h.engine.HandleMessage(context.Background(), models.Message{
		ConversationID:   conversationID,
		Text:             text,
		ChannelMessageID: fmt.Sprintf("wamid.%d", h.msgSeq),
		ReceivedAt:       time.Now().UTC(),
	})
	require.NoError(t, err)
	return reply
}

func (h *testHarness) state(t *testing.T, conversationID string) models.SessionState {
	t.Helper()
	sess, err := h.sessions.Get(context.Background(), conversationID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	return sess.State
}

// Rules hit, direct route, identity, confirmation, ticket.
func TestEngine_DirectRouteFlow(t *testing.T) {
	h := newHarness(t)
	conv := "guest-1"

	reply := h.send(t, conv, "Necesito toallas limpias")
	assert.Equal(t, identityPrompt, reply.Text)
	assert.Equal(t, models.AwaitingIdentity, reply.Awaiting)
	assert.Empty(t, h.fallback.Calls, "rule hit must not invoke the fallback classifier")
	assert.Equal(t, models.StateIdentity, h.state(t, conv))

	reply = h.send(t, conv, "Juan Pérez, habitación 205")
	assert.Equal(t, models.AwaitingConfirmation, reply.Awaiting)
	assert.Contains(t, reply.Text, "Juan Pérez")
	assert.Contains(t, reply.Text, "Housekeeping")
	assert.Contains(t, reply.Text, "Habitación 205")

	reply = h.send(t, conv, "Sí")
	assert.Contains(t, reply.Text, "¡Listo!")
	assert.NotEmpty(t, reply.TicketID)
	assert.Equal(t, models.StateTicketCreated, h.state(t, conv))

	require.Len(t, h.tickets.tickets, 1)
	ticket := h.tickets.tickets[0]
	assert.Equal(t, models.AreaHousekeeping, ticket.Area)
	assert.Equal(t, "Necesito toallas limpias", ticket.Detalle)
	assert.Equal(t, "205", ticket.Ubicacion)
	assert.Equal(t, "Juan Pérez", ticket.HuespedNombre)
	assert.Equal(t, models.SourceRules, ticket.Routing.Source)
	assert.GreaterOrEqual(t, ticket.Routing.Confidence, 0.85)
	assert.Equal(t, "v1", ticket.Routing.Version)
	assert.NoError(t, ticket.Routing.Valid())
}

// Rules miss, low fallback confidence, clarification menu, menu choice.
func TestEngine_ClarificationFlow(t *testing.T) {
	h := newHarness(t)
	conv := "guest-2"
	text := "Tengo un problema en mi habitación"

	h.fallback.Responses[text] = &classifier.Result{
		Intent:     classifier.IntentTicketRequest,
		Confidence: 0.40,
		Reason:     "Vague request",
	}

	reply := h.send(t, conv, text)
	assert.Equal(t, models.AwaitingMenuChoice, reply.Awaiting, "clarification must precede identity")
	assert.Contains(t, reply.Text, "1️⃣ *Mantenimiento*")
	assert.Equal(t, models.StateAreaClarification, h.state(t, conv))

	reply = h.send(t, conv, "2")
	assert.Equal(t, identityPrompt, reply.Text)

	h.send(t, conv, "Ana Silva habitación 310")
	reply = h.send(t, conv, "si")
	assert.Contains(t, reply.Text, "¡Listo!")

	require.Len(t, h.tickets.tickets, 1)
	ticket := h.tickets.tickets[0]
	assert.Equal(t, models.AreaHousekeeping, ticket.Area)
	assert.Equal(t, models.SourceClarification, ticket.Routing.Source)
	assert.Equal(t, 1.0, ticket.Routing.Confidence)
	assert.Equal(t, "User chose option 2: HOUSEKEEPING", ticket.Routing.Reason)
}

// Non-actionable message goes to FAQ, no ticket.
func TestEngine_FAQHandoff(t *testing.T) {
	h := newHarness(t)
	conv := "guest-3"

	reply := h.send(t, conv, "¿A qué hora es el desayuno?")
	assert.Contains(t, reply.Text, "desayuno se sirve")
	assert.Contains(t, reply.Text, faqFollowUp)
	assert.Equal(t, models.AwaitingNone, reply.Awaiting)
	assert.Equal(t, models.StateFAQHandoff, h.state(t, conv))
	assert.Empty(t, h.tickets.tickets)

	// Terminal state: the next message starts a fresh flow.
	reply = h.send(t, conv, "Necesito toallas")
	assert.Equal(t, identityPrompt, reply.Text)
}

func TestEngine_FAQFallbackAnswer(t *testing.T) {
	h := newHarness(t)

	// Unknown question, classifier says not understood.
	reply := h.send(t, "guest-4", "xyzzy")
	assert.Contains(t, reply.Text, "puedes contactar a recepción")
	assert.Empty(t, h.tickets.tickets)
}

// Fallback classifier failure is a confidence-0 miss, never a default area.
func TestEngine_ClassifierFailureEscalatesToClarification(t *testing.T) {
	h := newHarness(t)
	h.fallback.Err = classifier.ErrClassifierTimeout

	reply := h.send(t, "guest-5", "Tengo un problema")
	assert.Equal(t, models.AwaitingMenuChoice, reply.Awaiting)
	assert.Empty(t, h.tickets.tickets)
}

func TestEngine_ClarificationMenuKeywords(t *testing.T) {
	tests := []struct {
		input string
		area  models.Area
	}{
		{"1", models.AreaMantencion},
		{"mantenimiento", models.AreaMantencion},
		{"limpieza", models.AreaHousekeeping},
		{"3", models.AreaRecepcion},
		{"queja", models.AreaGerencia},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, area, ok := parseMenuChoice(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.area, area)
		})
	}

	_, _, ok := parseMenuChoice("5")
	assert.False(t, ok)
	_, _, ok = parseMenuChoice("lo que sea")
	assert.False(t, ok)
}

func TestEngine_ClarificationRetryCap(t *testing.T) {
	h := newHarness(t)
	conv := "guest-6"

	h.fallback.Responses["Tengo un problema"] = &classifier.Result{
		Intent:     classifier.IntentTicketRequest,
		Confidence: 0.30,
	}
	h.send(t, conv, "Tengo un problema")

	// Two invalid replies re-prompt with the same menu.
	reply := h.send(t, conv, "que")
	assert.Equal(t, clarificationReprompt, reply.Text)
	reply = h.send(t, conv, "9")
	assert.Equal(t, clarificationReprompt, reply.Text)

	// Third invalid reply exhausts the cap and escalates to management.
	reply = h.send(t, conv, "no entiendo nada")
	assert.Contains(t, reply.Text, "Gerencia")
	assert.Equal(t, models.AwaitingIdentity, reply.Awaiting)

	h.send(t, conv, "Luis Soto habitación 101")
	h.send(t, conv, "si")

	require.Len(t, h.tickets.tickets, 1)
	ticket := h.tickets.tickets[0]
	assert.Equal(t, models.AreaGerencia, ticket.Area)
	assert.Equal(t, models.SourceFallback, ticket.Routing.Source)
	assert.Equal(t, 0.0, ticket.Routing.Confidence)
}

func TestEngine_IdentityAcrossTwoMessages(t *testing.T) {
	h := newHarness(t)
	conv := "guest-7"

	h.send(t, conv, "no hay agua caliente")

	reply := h.send(t, conv, "soy Pedro Fuentes")
	assert.Equal(t, "Gracias, pero aún necesito tu número de habitación. ¿Puedes proporcionarlo?", reply.Text)

	reply = h.send(t, conv, "habitación 402")
	assert.Equal(t, models.AwaitingConfirmation, reply.Awaiting)
	assert.Contains(t, reply.Text, "Pedro Fuentes")
	assert.Contains(t, reply.Text, "Habitación 402")
}

// The room in the original message is only a hint; the confirmed value wins.
func TestEngine_ConfirmedRoomOverridesExtractedHint(t *testing.T) {
	h := newHarness(t)
	conv := "guest-8"

	h.send(t, conv, "la luz no funciona en la habitación 305")
	reply := h.send(t, conv, "Carla Muñoz, habitación 512")
	assert.Contains(t, reply.Text, "Habitación 512")

	h.send(t, conv, "sí")
	require.Len(t, h.tickets.tickets, 1)
	assert.Equal(t, "512", h.tickets.tickets[0].Ubicacion)
}

func TestEngine_NoRestartsIdentity(t *testing.T) {
	h := newHarness(t)
	conv := "guest-9"

	h.send(t, conv, "necesito toallas")
	h.send(t, conv, "Juan Pérez habitación 205")

	reply := h.send(t, conv, "no")
	assert.Equal(t, confirmationRestart, reply.Text)
	assert.Equal(t, models.StateIdentity, h.state(t, conv))
	assert.Empty(t, h.tickets.tickets)

	reply = h.send(t, conv, "Pedro Díaz habitación 206")
	assert.Contains(t, reply.Text, "Pedro Díaz")
	assert.Contains(t, reply.Text, "Habitación 206")
}

// Naming a department at the confirmation prompt corrects the area without
// discarding the collected identity.
func TestEngine_AreaCorrectionAtConfirmation(t *testing.T) {
	h := newHarness(t)
	conv := "guest-9b"

	h.send(t, conv, "necesito toallas")
	h.send(t, conv, "Juan Pérez habitación 205")

	reply := h.send(t, conv, "mantención")
	assert.Equal(t, models.AwaitingConfirmation, reply.Awaiting)
	assert.Contains(t, reply.Text, "Mantenimiento")
	assert.Contains(t, reply.Text, "Juan Pérez")

	h.send(t, conv, "sí")
	require.Len(t, h.tickets.tickets, 1)
	ticket := h.tickets.tickets[0]
	assert.Equal(t, models.AreaMantencion, ticket.Area)
	assert.Equal(t, models.SourceClarification, ticket.Routing.Source)
	assert.Equal(t, 1.0, ticket.Routing.Confidence)
}

func TestEngine_PersistenceFailureKeepsSessionRetryable(t *testing.T) {
	h := newHarness(t)
	conv := "guest-10"

	h.send(t, conv, "necesito toallas")
	h.send(t, conv, "Juan Pérez habitación 205")

	h.tickets.err = fmt.Errorf("connection refused")
	reply := h.send(t, conv, "sí")
	assert.Equal(t, ticketRetryPrompt, reply.Text)
	assert.NotContains(t, reply.Text, "¡Listo!")
	assert.Empty(t, reply.TicketID)
	assert.Equal(t, models.StateConfirmation, h.state(t, conv))

	h.tickets.err = nil
	reply = h.send(t, conv, "sí")
	assert.Contains(t, reply.Text, "¡Listo!")
	require.Len(t, h.tickets.tickets, 1)
}

func TestEngine_DuplicateDeliveryIsNoOp(t *testing.T) {
	h := newHarness(t)
	conv := "guest-11"
	ctx := context.Background()

	msg := models.Message{
		ConversationID:   conv,
		Text:             "necesito toallas",
		ChannelMessageID: "wamid.dup",
		ReceivedAt:       time.Now().UTC(),
	}

	reply, err := h.engine.HandleMessage(ctx, msg)
	require.NoError(t, err)
	assert.False(t, reply.Duplicate)
	assert.Equal(t, models.StateIdentity, h.state(t, conv))

	reply, err = h.engine.HandleMessage(ctx, msg)
	require.NoError(t, err)
	assert.True(t, reply.Duplicate)
	assert.Empty(t, reply.Text)
	assert.Equal(t, models.StateIdentity, h.state(t, conv), "no new transition on redelivery")
}

type flakySessionStore struct {
	*session.Store
	failSaves int
}

func (f *flakySessionStore) Save(ctx context.Context, s *models.ConversationSession) error {
	if f.failSaves > 0 {
		f.failSaves--
		return errors.New("connection reset")
	}
	return f.Store.Save(ctx, s)
}

// A redelivery after a failed processing attempt is handled, not dropped:
// the message id is consumed only once the transition has been persisted.
func TestEngine_RedeliveryAfterFailureIsProcessed(t *testing.T) {
	h := newHarness(t)
	flaky := &flakySessionStore{Store: h.sessions, failSaves: 1}
	engine := NewEngine(
		flaky, h.fallback, h.tickets, faq.NewStaticResponder(), nil, nil,
		logger.NewTestLogger(t), Options{},
	)
	conv := "guest-14"
	ctx := context.Background()

	msg := models.Message{
		ConversationID:   conv,
		Text:             "necesito toallas",
		ChannelMessageID: "wamid.retry",
		ReceivedAt:       time.Now().UTC(),
	}

	_, err := engine.HandleMessage(ctx, msg)
	require.Error(t, err)

	reply, err := engine.HandleMessage(ctx, msg)
	require.NoError(t, err)
	assert.False(t, reply.Duplicate)
	assert.Equal(t, identityPrompt, reply.Text)
	assert.Equal(t, models.StateIdentity, h.state(t, conv))

	// Only now is the id spent.
	reply, err = engine.HandleMessage(ctx, msg)
	require.NoError(t, err)
	assert.True(t, reply.Duplicate)
}

func TestEngine_CancelMidFlow(t *testing.T) {
	h := newHarness(t)
	conv := "guest-12"
	ctx := context.Background()

	h.send(t, conv, "necesito toallas")
	reply := h.send(t, conv, "cancelar")
	assert.Equal(t, cancelReply, reply.Text)

	sess, err := h.sessions.Get(ctx, conv)
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Next message starts over.
	reply = h.send(t, conv, "no hay agua caliente")
	assert.Equal(t, identityPrompt, reply.Text)
}

func TestEngine_TicketCreatedIsTerminal(t *testing.T) {
	h := newHarness(t)
	conv := "guest-13"

	h.send(t, conv, "necesito toallas")
	h.send(t, conv, "Juan Pérez habitación 205")
	h.send(t, conv, "sí")
	require.Len(t, h.tickets.tickets, 1)

	// A fresh request after the terminal state starts a new session.
	reply := h.send(t, conv, "el wifi no funciona")
	assert.Equal(t, identityPrompt, reply.Text)
	h.send(t, conv, "Juan Pérez habitación 205")
	h.send(t, conv, "sí")
	require.Len(t, h.tickets.tickets, 2)
	assert.Equal(t, models.AreaMantencion, h.tickets.tickets[1].Area)
}
