package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking-api/internal/model"
	"github.com/clinicore/booking-api/internal/repository"
	"github.com/clinicore/booking-api/internal/service/schedule"
	apperrors "github.com/clinicore/booking-api/pkg/errors"
	"github.com/clinicore/booking-api/pkg/metrics"
)

// Service is the only path that may create a non-cancelled appointment.
// Interval validation happens here; the overlap re-check and the insert
// run as one atomic unit in the repository, so an availability snapshot
// fetched earlier is never trusted.
type Service struct {
	appointments repository.AppointmentRepository
	scheduleSvc  *schedule.Service
	metrics      *metrics.Metrics
}

func NewService(appointments repository.AppointmentRepository, scheduleSvc *schedule.Service, m *metrics.Metrics) *Service {
	return &Service{
		appointments: appointments,
		scheduleSvc:  scheduleSvc,
		metrics:      m,
	}
}

// TryBook validates the requested interval, checks it against the
// provider's effective working window, then hands off to the atomic
// conflict-check-and-insert. Of any two concurrent attempts with
// overlapping intervals at most one succeeds; the loser gets
// ErrSlotConflict and no partial record is left behind.
func (s *Service) TryBook(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if !req.EndTime.After(req.StartTime) {
		s.metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.InvalidInterval("end_time must be after start_time")
	}
	if !sameDate(req.StartTime, req.EndTime) {
		s.metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.InvalidInterval("appointments may not cross midnight")
	}

	window, err := s.scheduleSvc.EffectiveWindow(ctx, req.ProviderID, req.StartTime)
	if err != nil {
		s.metrics.BookingsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if window == nil || req.StartTime.Before(window.Start) || req.EndTime.After(window.End) {
		s.metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.OutsideWorkingHours()
	}

	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		ProviderID: req.ProviderID,
		PatientID:  req.PatientID,
		ServiceID:  req.ServiceID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     model.AppointmentStatusScheduled,
		Notes:      req.Notes,
	}

	if err := s.appointments.Book(ctx, apt); err != nil {
		if apperrors.IsCode(err, apperrors.ErrSlotConflict) {
			s.metrics.BookingsTotal.WithLabelValues("conflict").Inc()
		} else {
			s.metrics.BookingsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	s.metrics.BookingsTotal.WithLabelValues("booked").Inc()
	return apt, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
