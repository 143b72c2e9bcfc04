package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/service/commands"
	client "github.com/mamadbah2/fishledger/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService answers operator queries received over the WhatsApp Cloud API.
type MetaWhatsAppService struct {
	verifyToken string
	client      client.Client
	dispatcher  commands.Dispatcher
	logger      *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(verifyToken string, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		verifyToken: verifyToken,
		client:      client,
		dispatcher:  dispatcher,
		logger:      logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.verifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers every inbound message in the payload. Status
// callbacks are only logged.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, status := range change.Value.Statuses {
				s.logger.Debug("message status", zap.String("message_id", status.ID), zap.String("status", status.Status))
			}

			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("message_id", msg.ID), zap.String("type", msg.Type))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		reply = errorReply(err)
		s.logger.Info("command rejected", zap.String("command", string(cmd.Type)), zap.Error(err))
	}

	return s.send(ctx, client.SendTextMessageRequest{To: msg.From, Body: reply})
}

// SendOutbound pushes a text message, such as the weekly digest.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
}

func (s *MetaWhatsAppService) send(ctx context.Context, req client.SendTextMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.SendTextMessage(ctxWithTimeout, req)
	if err != nil {
		return err
	}
	s.logger.Debug("message sent", zap.String("to", req.To), zap.String("message_id", resp.MessageID()))
	return nil
}

func errorReply(err error) string {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return fmt.Sprintf("Cannot answer: %s %s.", vErr.Field, vErr.Reason)
	case errors.Is(err, commands.ErrInvalidArguments):
		return "Missing or invalid arguments.\n" + commands.HelpText
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "Unknown command.\n" + commands.HelpText
	default:
		return "Sorry, the ledger is unavailable right now. Please try again later."
	}
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
