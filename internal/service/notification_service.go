package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/case-workflow/internal/config"
	"github.com/spec-kit/case-workflow/internal/events"
)

// Consumer names used for subscriptions and delivery metrics.
const (
	ConsumerNotifications = "notifications"
	ConsumerSurvey        = "survey"
)

// NotificationService reacts to committed workflow events with outbound
// notifications. Delivery itself is stubbed to structured logs.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
	}
}

// Register subscribes the notification and survey consumers. wrap, when
// non-nil, decorates each handler, typically with deduplication.
func (n *NotificationService) Register(dispatcher events.Dispatcher, wrap func(string, events.EventHandler) events.EventHandler) {
	if dispatcher == nil {
		return
	}
	if wrap == nil {
		wrap = func(_ string, h events.EventHandler) events.EventHandler { return h }
	}
	dispatcher.Subscribe(ConsumerNotifications, wrap(ConsumerNotifications, n.handleNotification),
		events.EventCaseEscalated,
		events.EventCaseDerived,
		events.EventCaseReturned,
		events.EventCaseClosed,
	)
	dispatcher.Subscribe(ConsumerSurvey, wrap(ConsumerSurvey, n.handleSurveyTrigger), events.EventCaseClosed)
}

func (n *NotificationService) handleNotification(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	switch payload := event.Payload.(type) {
	case events.CaseEscalatedPayload:
		n.sendWebhookNotificationStub(ctx, event, payload.ToHandlerID)
	case events.CaseDerivedPayload:
		n.sendEmailNotificationStub(ctx, event, payload.DestinationAddress)
	case events.CaseReturnedPayload:
		n.sendWebhookNotificationStub(ctx, event, event.Actor.EmployeeID)
	case events.CaseClosedPayload:
		n.sendWebhookNotificationStub(ctx, event, payload.ClosedBy)
	}
	return nil
}

func (n *NotificationService) handleSurveyTrigger(_ context.Context, event events.Event) error {
	if strings.TrimSpace(n.cfg.SurveyURL) == "" {
		return nil
	}
	n.logger.Debug("triggerSurveyStub",
		zap.String("url", n.cfg.SurveyURL),
		zap.String("case_id", event.CaseID))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("case_id", event.CaseID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event, recipient string) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("recipient", recipient),
		zap.String("case_id", event.CaseID),
		zap.String("event_type", string(event.Type)))
}
