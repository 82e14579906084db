// internal/notify/notify.go
//
// Staff notification on ticket creation. Fans out over SNS (topic per hotel
// ops team) and optionally SES email. Delivery is best-effort: the ticket is
// already committed, failures are logged and never reach the guest.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"guest-router/internal/common/config"
	"guest-router/internal/common/logger"
	"guest-router/internal/models"
)

// Interfaces for mocking the AWS clients.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type StaffNotifier struct {
	config    *config.NotificationConfig
	snsClient SNSService
	sesClient SESService
	logger    logger.Logger
}

func NewStaffNotifier(cfg *config.NotificationConfig, snsClient SNSService, sesClient SESService, log logger.Logger) *StaffNotifier {
	return &StaffNotifier{
		config:    cfg,
		snsClient: snsClient,
		sesClient: sesClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// TicketCreated publishes the new ticket to the staff channels.
func (n *StaffNotifier) TicketCreated(ctx context.Context, t *models.Ticket) {
	if n.config.SNS.Enabled && n.snsClient != nil {
		if err := n.publishSNS(ctx, t); err != nil {
			n.logger.Error("SNS publish failed", map[string]interface{}{
				"error":    err.Error(),
				"ticketId": t.ID,
			})
		}
	}

	if n.config.Email.Enabled && n.sesClient != nil {
		if err := n.sendEmail(ctx, t); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"error":    err.Error(),
				"ticketId": t.ID,
			})
		}
	}
}

func (n *StaffNotifier) publishSNS(ctx context.Context, t *models.Ticket) error {
	payload, err := json.Marshal(map[string]interface{}{
		"event":         "ticket_created",
		"ticketId":      t.ID,
		"area":          t.Area,
		"detalle":       t.Detalle,
		"ubicacion":     t.Ubicacion,
		"huespedNombre": t.HuespedNombre,
		"routingSource": t.Routing.Source,
		"createdAt":     t.CreatedAt,
	})
	if err != nil {
		return err
	}

	_, err = n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.SNS.TopicARN),
		Subject:  aws.String(fmt.Sprintf("Nuevo ticket %s", t.Area.DisplayName())),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"area": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(t.Area)),
			},
		},
	})
	return err
}

func (n *StaffNotifier) sendEmail(ctx context.Context, t *models.Ticket) error {
	subject := fmt.Sprintf("Nuevo ticket de %s - Habitación %s", t.Area.DisplayName(), t.Ubicacion)
	body := fmt.Sprintf(
		"Área: %s\nHabitación: %s\nHuésped: %s\n\nSolicitud:\n%s\n\nOrigen: %s (confianza %.2f)",
		t.Area.DisplayName(), t.Ubicacion, t.HuespedNombre, t.Detalle,
		t.Routing.Source, t.Routing.Confidence,
	)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.config.Email.ToEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.Email.FromEmail),
	})
	return err
}
