// internal/conversation/engine.go
//
// The conversation engine. Invoked once per inbound message, it runs the
// two-layer classification, drives the per-guest state machine and hands the
// transport a reply to deliver. Sessions for different guests are handled in
// parallel; messages for one guest are serialized through a keyed mutex so a
// transition never runs against a stale session read.
package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"guest-router/internal/classifier"
	"guest-router/internal/common/logger"
	"guest-router/internal/common/metrics"
	"guest-router/internal/faq"
	"guest-router/internal/models"
	"guest-router/internal/routing/policy"
	"guest-router/internal/routing/rules"
	"guest-router/internal/session"
)

// SessionStore is the session persistence surface the engine needs.
type SessionStore interface {
	Get(ctx context.Context, conversationID string) (*models.ConversationSession, error)
	Save(ctx context.Context, s *models.ConversationSession) error
	Delete(ctx context.Context, conversationID string) error
	Seen(ctx context.Context, conversationID, channelMessageID string) (bool, error)
	MarkSeen(ctx context.Context, conversationID, channelMessageID string) (bool, error)
}

// TicketStore persists confirmed tickets.
type TicketStore interface {
	Create(ctx context.Context, t *models.Ticket) error
}

// Notifier tells staff about a created ticket. Failures are logged, never
// surfaced to the guest.
type Notifier interface {
	TicketCreated(ctx context.Context, t *models.Ticket)
}

// Auditor records routing decisions for offline analysis. Non-critical.
type Auditor interface {
	RecordDecision(ctx context.Context, conversationID string, decision models.RoutingDecision)
}

// Options tune the engine's routing policy and retry behavior.
type Options struct {
	ConfidenceThreshold float64
	ClarifyMaxRetries   int
}

type Engine struct {
	sessions SessionStore
	fallback classifier.Classifier
	tickets  TicketStore
	faq      faq.Responder
	notifier Notifier
	auditor  Auditor
	locks    *session.KeyedMutex
	logger   logger.Logger
	opts     Options
	now      func() time.Time
}

func NewEngine(
	sessions SessionStore,
	fallback classifier.Classifier,
	tickets TicketStore,
	responder faq.Responder,
	notifier Notifier,
	auditor Auditor,
	log logger.Logger,
	opts Options,
) *Engine {
	if opts.ConfidenceThreshold == 0 {
		opts.ConfidenceThreshold = 0.65
	}
	if opts.ClarifyMaxRetries == 0 {
		opts.ClarifyMaxRetries = 3
	}
	return &Engine{
		sessions: sessions,
		fallback: fallback,
		tickets:  tickets,
		faq:      responder,
		notifier: notifier,
		auditor:  auditor,
		locks:    session.NewKeyedMutex(),
		logger:   log.WithFields(map[string]interface{}{"component": "engine"}),
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// HandleMessage processes one inbound message and returns the reply the
// transport should deliver. A duplicate delivery returns Reply.Duplicate
// with no text.
func (e *Engine) HandleMessage(ctx context.Context, msg models.Message) (*models.Reply, error) {
	e.locks.Lock(msg.ConversationID)
	defer e.locks.Unlock(msg.ConversationID)

	start := time.Now()

	// Check-then-mark: the id is recorded only after the message has been
	// fully handled, so a delivery that fails mid-flight can be retried by
	// the transport instead of being dropped as a duplicate.
	duplicate, err := e.sessions.Seen(ctx, msg.ConversationID, msg.ChannelMessageID)
	if err != nil {
		return nil, err
	}
	if duplicate {
		metrics.DuplicateDeliveries.Inc()
		e.logger.Info("duplicate delivery ignored", map[string]interface{}{
			"conversationId":   msg.ConversationID,
			"channelMessageId": msg.ChannelMessageID,
		})
		return &models.Reply{Duplicate: true}, nil
	}

	sess, err := e.sessions.Get(ctx, msg.ConversationID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.State.Terminal() {
		sess = models.NewConversationSession(msg.ConversationID, e.now())
	}

	state := sess.State
	defer func() {
		metrics.MessagesProcessed.WithLabelValues(string(state)).Inc()
		metrics.MessageDuration.WithLabelValues(string(state)).Observe(time.Since(start).Seconds())
	}()

	if state != models.StateNew && isCancel(msg.Text) {
		if err := e.sessions.Delete(ctx, msg.ConversationID); err != nil {
			return nil, err
		}
		e.markProcessed(ctx, msg)
		return &models.Reply{Text: cancelReply, Awaiting: models.AwaitingNone}, nil
	}

	var reply *models.Reply
	switch state {
	case models.StateNew:
		reply, err = e.handleNew(ctx, sess, msg)
	case models.StateAreaClarification:
		reply, err = e.handleClarification(ctx, sess, msg)
	case models.StateIdentity:
		reply, err = e.handleIdentity(ctx, sess, msg)
	case models.StateConfirmation:
		reply, err = e.handleConfirmation(ctx, sess, msg)
	default:
		err = fmt.Errorf("unknown session state %q", state)
	}
	if err != nil {
		return nil, err
	}

	if err := e.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	e.markProcessed(ctx, msg)
	return reply, nil
}

// markProcessed records the channel message id once the transition has been
// persisted. A failure here means the worst case is one reprocessed
// redelivery, never a lost guest message.
func (e *Engine) markProcessed(ctx context.Context, msg models.Message) {
	if _, err := e.sessions.MarkSeen(ctx, msg.ConversationID, msg.ChannelMessageID); err != nil {
		e.logger.Warn("recording processed message id failed", map[string]interface{}{
			"conversationId":   msg.ConversationID,
			"channelMessageId": msg.ChannelMessageID,
			"error":            err.Error(),
		})
	}
}

func (e *Engine) handleNew(ctx context.Context, sess *models.ConversationSession, msg models.Message) (*models.Reply, error) {
	candidate := e.classify(ctx, msg.Text)

	decision := policy.Decide(candidate, e.opts.ConfidenceThreshold)

	switch decision.Action {
	case policy.RouteFAQ:
		return e.handoffFAQ(ctx, sess, msg.Text)

	case policy.RouteDirect:
		sess.PendingDetail = msg.Text
		sess.ExtractedRoom = extractRoom(msg.Text)
		sess.Decision = decision.Routing
		sess.State = models.StateIdentity
		e.recordDecision(ctx, sess.ConversationID, *decision.Routing)
		return &models.Reply{Text: identityPrompt, Awaiting: models.AwaitingIdentity}, nil

	default: // policy.RouteClarify
		sess.PendingDetail = msg.Text
		sess.ExtractedRoom = extractRoom(msg.Text)
		sess.State = models.StateAreaClarification
		metrics.ClarificationsRequested.Inc()
		return &models.Reply{Text: clarificationMenu(msg.Text), Awaiting: models.AwaitingMenuChoice}, nil
	}
}

// classify runs the rule tables and, only on a miss, the fallback
// classifier. A fallback failure is a confidence-0.0 miss, never a default
// area.
func (e *Engine) classify(ctx context.Context, text string) policy.Candidate {
	if hit := rules.Classify(text); hit.Matched {
		metrics.RuleHits.WithLabelValues(string(hit.Area)).Inc()
		return policy.Candidate{
			Source:     models.SourceRules,
			Intent:     policy.IntentTicketRequest,
			Area:       hit.Area,
			Confidence: hit.Confidence,
			Reason:     hit.Reason,
		}
	}

	result, err := e.fallback.Classify(ctx, text, extractRoom(text))
	if err != nil {
		metrics.FallbackCalls.WithLabelValues("error").Inc()
		e.logger.Warn("fallback classifier failed", map[string]interface{}{
			"error": err.Error(),
		})
		return policy.Candidate{
			Source:     models.SourceFallback,
			Intent:     policy.IntentTicketRequest,
			Confidence: 0.0,
			Reason:     "Fallback classifier unavailable",
		}
	}

	metrics.FallbackCalls.WithLabelValues("ok").Inc()
	return policy.Candidate{
		Source:     models.SourceLLM,
		Intent:     result.Intent,
		Area:       result.Area,
		Confidence: result.Confidence,
		Reason:     result.Reason,
	}
}

func (e *Engine) handoffFAQ(ctx context.Context, sess *models.ConversationSession, text string) (*models.Reply, error) {
	answer, found, err := e.faq.Answer(ctx, text)
	if err != nil || !found {
		if err != nil {
			e.logger.Warn("faq responder failed", map[string]interface{}{"error": err.Error()})
		}
		answer = faq.FallbackAnswer
	}

	sess.State = models.StateFAQHandoff
	return &models.Reply{
		Text:     answer + "\n\n" + faqFollowUp,
		Awaiting: models.AwaitingNone,
	}, nil
}

// menu choice keywords, checked before a bare digit.
var (
	choiceMantencionRE   = regexp.MustCompile(`\b(mantencion|mantenimiento|tecnico|mantenci[oó]n)\b`)
	choiceHousekeepingRE = regexp.MustCompile(`\b(housekeeping|limpieza|aseo|toallas)\b`)
	choiceRecepcionRE    = regexp.MustCompile(`\b(recepcion|recepci[oó]n|pago|reserva)\b`)
	choiceGerenciaRE     = regexp.MustCompile(`\b(gerencia|queja|reclamo|gerente)\b`)
)

var menuChoices = map[string]models.Area{
	"1": models.AreaMantencion,
	"2": models.AreaHousekeeping,
	"3": models.AreaRecepcion,
	"4": models.AreaGerencia,
}

func parseMenuChoice(text string) (choice string, area models.Area, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case choiceMantencionRE.MatchString(lower):
		choice = "1"
	case choiceHousekeepingRE.MatchString(lower):
		choice = "2"
	case choiceRecepcionRE.MatchString(lower):
		choice = "3"
	case choiceGerenciaRE.MatchString(lower):
		choice = "4"
	default:
		choice = lower
	}

	area, ok = menuChoices[choice]
	return choice, area, ok
}

func (e *Engine) handleClarification(ctx context.Context, sess *models.ConversationSession, msg models.Message) (*models.Reply, error) {
	choice, area, ok := parseMenuChoice(msg.Text)
	if !ok {
		sess.ClarifyAttempts++
		if sess.ClarifyAttempts >= e.opts.ClarifyMaxRetries {
			// Give up on the menu and let management triage it.
			sess.Decision = &models.RoutingDecision{
				Area:       models.AreaGerencia,
				Source:     models.SourceFallback,
				Confidence: 0.0,
				Reason:     "Clarification retries exhausted",
				Version:    models.RoutingVersion,
			}
			sess.State = models.StateIdentity
			e.recordDecision(ctx, sess.ConversationID, *sess.Decision)
			return &models.Reply{
				Text:     escalationNotice(sess.PendingDetail),
				Awaiting: models.AwaitingIdentity,
			}, nil
		}
		return &models.Reply{Text: clarificationReprompt, Awaiting: models.AwaitingMenuChoice}, nil
	}

	sess.Decision = &models.RoutingDecision{
		Area:       area,
		Source:     models.SourceClarification,
		Confidence: 1.0,
		Reason:     fmt.Sprintf("User chose option %s: %s", choice, area),
		Version:    models.RoutingVersion,
	}
	sess.State = models.StateIdentity
	e.recordDecision(ctx, sess.ConversationID, *sess.Decision)

	return &models.Reply{Text: identityPrompt, Awaiting: models.AwaitingIdentity}, nil
}

func (e *Engine) handleIdentity(_ context.Context, sess *models.ConversationSession, msg models.Message) (*models.Reply, error) {
	if name := extractName(msg.Text); name != "" {
		sess.GuestName = name
	}
	if room := extractRoom(msg.Text); room != "" {
		sess.RoomNumber = room
	}

	if sess.GuestName == "" || sess.RoomNumber == "" {
		return &models.Reply{
			Text:     missingIdentityPrompt(sess.GuestName != "", sess.RoomNumber != ""),
			Awaiting: models.AwaitingIdentity,
		}, nil
	}

	sess.State = models.StateConfirmation
	return &models.Reply{
		Text:     confirmationSummary(sess.GuestName, sess.Decision.Area, sess.PendingDetail, sess.RoomNumber),
		Awaiting: models.AwaitingConfirmation,
	}, nil
}

func (e *Engine) handleConfirmation(ctx context.Context, sess *models.ConversationSession, msg models.Message) (*models.Reply, error) {
	switch {
	case isYes(msg.Text):
		ticket := assembleTicket(sess, e.now())

		if err := e.tickets.Create(ctx, ticket); err != nil {
			// No success reply on a failed write: the session stays in
			// CONFIRMATION so the guest can try again.
			metrics.TicketsFailed.Inc()
			e.logger.Error("ticket persistence failed", map[string]interface{}{
				"conversationId": sess.ConversationID,
				"error":          err.Error(),
			})
			return &models.Reply{Text: ticketRetryPrompt, Awaiting: models.AwaitingConfirmation}, nil
		}

		metrics.TicketsCreated.WithLabelValues(string(ticket.Area), string(ticket.Routing.Source)).Inc()
		if e.notifier != nil {
			e.notifier.TicketCreated(ctx, ticket)
		}

		sess.State = models.StateTicketCreated
		return &models.Reply{
			Text:     ticketCreatedReply(ticket.Area, ticket.Ubicacion),
			Awaiting: models.AwaitingNone,
			TicketID: ticket.ID,
		}, nil

	case isNo(msg.Text):
		sess.GuestName = ""
		sess.RoomNumber = ""
		sess.State = models.StateIdentity
		return &models.Reply{Text: confirmationRestart, Awaiting: models.AwaitingIdentity}, nil

	default:
		// A department name instead of yes/no is an area correction: the
		// identity already collected stays valid, only the decision changes.
		if choice, area, ok := parseMenuChoice(msg.Text); ok {
			sess.Decision = &models.RoutingDecision{
				Area:       area,
				Source:     models.SourceClarification,
				Confidence: 1.0,
				Reason:     fmt.Sprintf("User chose option %s: %s", choice, area),
				Version:    models.RoutingVersion,
			}
			e.recordDecision(ctx, sess.ConversationID, *sess.Decision)
		}
		return &models.Reply{
			Text:     confirmationSummary(sess.GuestName, sess.Decision.Area, sess.PendingDetail, sess.RoomNumber),
			Awaiting: models.AwaitingConfirmation,
		}, nil
	}
}

func (e *Engine) recordDecision(ctx context.Context, conversationID string, decision models.RoutingDecision) {
	if e.auditor != nil {
		e.auditor.RecordDecision(ctx, conversationID, decision)
	}
}
