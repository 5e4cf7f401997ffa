package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/booking-api/internal/model"
	"github.com/clinicore/booking-api/internal/repository"
	apperrors "github.com/clinicore/booking-api/pkg/errors"
	"github.com/clinicore/booking-api/pkg/logger"
	"github.com/clinicore/booking-api/pkg/metrics"
)

// Service drives an appointment through its status graph. Completion is
// the only transition with side effects: it persists the new status,
// creates the payment and enqueues the billing and notification events
// in one transaction, and is idempotent against repeated completion
// signals. Every status write is a compare-and-swap against the status
// this instance read, so a transition validated against a stale read
// never overwrites a state another instance committed in between.
type Service struct {
	appointments repository.AppointmentRepository
	billing      repository.BillingRepository
	patients     repository.PatientRepository
	outbox       repository.OutboxRepository
	tx           repository.TxManager
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewService(
	appointments repository.AppointmentRepository,
	billing repository.BillingRepository,
	patients repository.PatientRepository,
	outbox repository.OutboxRepository,
	tx repository.TxManager,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		appointments: appointments,
		billing:      billing,
		patients:     patients,
		outbox:       outbox,
		tx:           tx,
		logger:       log,
		metrics:      m,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.appointments.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filters)
}

// TransitionTo advances an appointment to newStatus. Illegal requests
// fail with ErrInvalidTransition and leave the record untouched. A
// repeated completion of an already completed appointment is an
// observable no-op, never a second payment.
func (s *Service) TransitionTo(ctx context.Context, id uuid.UUID, newStatus model.AppointmentStatus, reason string) (*model.Appointment, error) {
	if !newStatus.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown status %q", newStatus), nil)
	}

	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status == model.AppointmentStatusCompleted && newStatus == model.AppointmentStatusCompleted {
		return s.completeIdempotent(ctx, apt)
	}

	if !apt.Status.CanTransitionTo(newStatus) {
		s.metrics.Transitions.WithLabelValues(string(newStatus), "invalid").Inc()
		return nil, apperrors.InvalidTransition(string(apt.Status), string(newStatus))
	}

	if newStatus == model.AppointmentStatusCompleted {
		if err := s.complete(ctx, apt); err != nil {
			s.metrics.Transitions.WithLabelValues(string(newStatus), "error").Inc()
			return nil, err
		}
	} else {
		var cancelReason *string
		if newStatus == model.AppointmentStatusCancelled && reason != "" {
			cancelReason = &reason
		}
		if err := s.appointments.UpdateStatus(ctx, nil, apt.ID, apt.Status, newStatus, cancelReason); err != nil {
			outcome := "error"
			if apperrors.IsCode(err, apperrors.ErrInvalidTransition) {
				outcome = "invalid"
			}
			s.metrics.Transitions.WithLabelValues(string(newStatus), outcome).Inc()
			return nil, err
		}
		apt.CancelReason = cancelReason
	}

	s.metrics.Transitions.WithLabelValues(string(newStatus), "ok").Inc()
	apt.Status = newStatus
	return apt, nil
}

// completeIdempotent handles a completion signal for an appointment
// that already completed. The duplicate must surface as an explicit
// success without side effects, not as a swallowed error.
func (s *Service) completeIdempotent(ctx context.Context, apt *model.Appointment) (*model.Appointment, error) {
	exists, err := s.billing.PaymentExists(ctx, apt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing payment: %w", err)
	}
	if !exists {
		// Status and payment are written in one transaction, so a
		// completed appointment without a payment means external
		// interference with the data.
		return nil, apperrors.Internal(fmt.Errorf("appointment %s completed without payment", apt.ID))
	}

	s.logger.Info("duplicate completion ignored", "appointment_id", apt.ID.String())
	s.metrics.Transitions.WithLabelValues(string(model.AppointmentStatusCompleted), "duplicate").Inc()
	return apt, nil
}

func (s *Service) complete(ctx context.Context, apt *model.Appointment) error {
	services, err := s.resolveBillableServices(ctx, apt)
	if err != nil {
		return apperrors.ServiceLookup(err)
	}

	exists, err := s.billing.PaymentExists(ctx, apt.ID)
	if err != nil {
		return fmt.Errorf("failed to check existing payment: %w", err)
	}
	if exists {
		s.logger.Info("payment already exists, completing without side effects", "appointment_id", apt.ID.String())
		return s.appointments.UpdateStatus(ctx, nil, apt.ID, apt.Status, model.AppointmentStatusCompleted, nil)
	}

	var total float64
	names := make([]string, 0, len(services))
	for _, svc := range services {
		total += svc.Cost
		names = append(names, svc.Name)
	}

	payment := &model.Payment{
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		ProviderID:    apt.ProviderID,
		Amount:        total,
		Description:   strings.Join(names, ", "),
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.appointments.UpdateStatus(ctx, tx, apt.ID, apt.Status, model.AppointmentStatusCompleted, nil); err != nil {
			return err
		}
		if err := s.billing.CreatePayment(ctx, tx, payment); err != nil {
			return err
		}

		billingPayload, err := json.Marshal(model.BillingCreatedEvent{
			AppointmentID: apt.ID,
			PatientID:     apt.PatientID,
			ProviderID:    apt.ProviderID,
			Amount:        payment.Amount,
			Description:   payment.Description,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal billing event: %w", err)
		}
		if err := s.outbox.CreateTx(ctx, tx, &model.OutboxEvent{
			EventType: model.EventBillingCreated,
			Payload:   billingPayload,
		}); err != nil {
			return err
		}

		notifPayload, err := json.Marshal(model.NotificationEvent{
			UserID:  apt.PatientID,
			Email:   s.patientEmail(ctx, apt.PatientID),
			Title:   "Appointment completed",
			Message: fmt.Sprintf("Your appointment on %s is complete. Billed: %s", apt.StartTime.Format("2006-01-02 15:04"), payment.Description),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal notification event: %w", err)
		}
		return s.outbox.CreateTx(ctx, tx, &model.OutboxEvent{
			EventType: model.EventAppointmentCompleted,
			Payload:   notifPayload,
		})
	})
	if apperrors.IsCode(err, apperrors.ErrDuplicatePayment) {
		// A racing completion won the UNIQUE(appointment_id) insert and
		// committed both the status and the payment; this attempt's
		// transaction rolled back cleanly, so the outcome it wanted
		// already exists.
		s.logger.Info("racing completion converged on existing payment", "appointment_id", apt.ID.String())
		return nil
	}
	return err
}

// patientEmail resolves the notification recipient. Notifications are
// fire-and-forget, so a failed directory lookup degrades to an
// unaddressed event rather than failing the completion.
func (s *Service) patientEmail(ctx context.Context, patientID uuid.UUID) string {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		s.logger.Warn("failed to resolve patient email for notification",
			"patient_id", patientID.String(), "error", err.Error())
		return ""
	}
	return patient.Email
}

// resolveBillableServices returns the services attached to the
// appointment, falling back to the appointment's own service reference
// for records created before multi-service attachments existed.
func (s *Service) resolveBillableServices(ctx context.Context, apt *model.Appointment) ([]*model.BillableService, error) {
	services, err := s.billing.ListServicesForAppointment(ctx, apt.ID)
	if err != nil {
		return nil, err
	}
	if len(services) > 0 {
		return services, nil
	}

	if apt.ServiceID == nil {
		return nil, fmt.Errorf("appointment %s has no billable services attached", apt.ID)
	}
	legacy, err := s.billing.GetService(ctx, *apt.ServiceID)
	if err != nil {
		return nil, err
	}
	return []*model.BillableService{legacy}, nil
}
