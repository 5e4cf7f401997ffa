package worker

import (
	"context"
	"encoding/json"

	"github.com/clinicore/booking-api/internal/email"
	"github.com/clinicore/booking-api/internal/model"
	"github.com/clinicore/booking-api/pkg/logger"
	"github.com/clinicore/booking-api/pkg/messaging"
)

// Notifier delivers appointment-completed notifications by email.
// Notifications are fire-and-forget: a failed send is logged, never
// retried into the booking core.
type Notifier struct {
	broker messaging.Broker
	email  email.Service
	logger *logger.Logger
}

func NewNotifier(broker messaging.Broker, email email.Service, logger *logger.Logger) *Notifier {
	return &Notifier{
		broker: broker,
		email:  email,
		logger: logger,
	}
}

// Run consumes notification events until the subscription channel
// closes or ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	msgs, err := n.broker.Subscribe(ctx, model.EventAppointmentCompleted)
	if err != nil {
		n.logger.Error(err, "failed to subscribe to notification events")
		return
	}

	for msg := range msgs {
		n.handle(ctx, msg)
	}
}

func (n *Notifier) handle(ctx context.Context, msg []byte) {
	var event model.NotificationEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		n.logger.Error(err, "failed to decode notification event")
		return
	}
	if event.Email == "" {
		n.logger.Warn("notification event without email address, skipping",
			"user_id", event.UserID.String())
		return
	}
	if err := n.email.Send(ctx, event.Email, event.Title, event.Message); err != nil {
		n.logger.Error(err, "failed to send notification email",
			"user_id", event.UserID.String())
	}
}
