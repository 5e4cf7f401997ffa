package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicore/booking-api/internal/model"
	"github.com/clinicore/booking-api/internal/repository"
	"github.com/clinicore/booking-api/internal/service/schedule"
	"github.com/clinicore/booking-api/pkg/metrics"
)

const (
	durationCacheTTL     = 5 * time.Minute
	durationCacheCleanup = 10 * time.Minute
)

// Service answers availability queries. The slot duration comes from
// the provider catalog and changes rarely, so it is cached in-process;
// the slot list itself is recomputed from scratch on every call.
type Service struct {
	providers    repository.ProviderRepository
	appointments repository.AppointmentRepository
	scheduleSvc  *schedule.Service
	durations    *gocache.Cache
	metrics      *metrics.Metrics
}

func NewService(
	providers repository.ProviderRepository,
	appointments repository.AppointmentRepository,
	scheduleSvc *schedule.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		providers:    providers,
		appointments: appointments,
		scheduleSvc:  scheduleSvc,
		durations:    gocache.New(durationCacheTTL, durationCacheCleanup),
		metrics:      m,
	}
}

// GetAvailability returns the ordered slot snapshot for one provider
// and date. The output is advisory: a slot marked available can be
// taken by the time a booking for it is submitted.
func (s *Service) GetAvailability(ctx context.Context, providerID uuid.UUID, date time.Time) ([]model.Slot, error) {
	duration, err := s.slotDuration(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve slot duration: %w", err)
	}

	window, err := s.scheduleSvc.EffectiveWindow(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	if window == nil {
		s.metrics.SlotQueries.Inc()
		return []model.Slot{}, nil
	}

	appointments, err := s.appointments.ListForProviderDate(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	s.metrics.SlotQueries.Inc()
	return GenerateSlots(window, duration, appointments), nil
}

func (s *Service) slotDuration(ctx context.Context, providerID uuid.UUID) (time.Duration, error) {
	key := providerID.String()
	if cached, ok := s.durations.Get(key); ok {
		return cached.(time.Duration), nil
	}

	duration, err := s.providers.GetSlotDuration(ctx, providerID)
	if err != nil {
		return 0, err
	}
	s.durations.Set(key, duration, gocache.DefaultExpiration)
	return duration, nil
}
