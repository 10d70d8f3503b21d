package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/gestion-soporte/mesa-ayuda/internal/events"
)

// NotificationService logs domain events for operators. The branch rejection
// notice itself goes through the notify sink; this subscriber is the
// operator-visible trail.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreado, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketEstadoCambiado, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketAsignado, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketAprobado, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketRechazado, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.Int64("ticket_id", event.TicketID),
		zap.Int64("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}
