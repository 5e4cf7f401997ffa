package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking-api/internal/model"
	"github.com/clinicore/booking-api/internal/service/schedule"
	apperrors "github.com/clinicore/booking-api/pkg/errors"
	"github.com/clinicore/booking-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "booking")

// monday is 2025-03-10, a Monday.
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

// lockingAppointmentRepo mirrors the production booking contract: the
// conflict check and the insert run as one atomic unit per provider.
type lockingAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*model.Appointment
}

func (r *lockingAppointmentRepo) Book(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.appointments {
		if existing.ProviderID != apt.ProviderID || existing.Status == model.AppointmentStatusCancelled {
			continue
		}
		if model.Overlaps(apt.StartTime, apt.EndTime, existing.StartTime, existing.EndTime) {
			return apperrors.SlotConflict()
		}
	}
	r.appointments = append(r.appointments, apt)
	return nil
}

func (r *lockingAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, apt := range r.appointments {
		if apt.ID == id {
			return apt, nil
		}
	}
	return nil, apperrors.NotFound("appointment", nil)
}

func (r *lockingAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.Appointment(nil), r.appointments...), nil
}

func (r *lockingAppointmentRepo) ListForProviderDate(_ context.Context, _ uuid.UUID, _ time.Time) ([]*model.Appointment, error) {
	return r.List(context.Background(), nil)
}

func (r *lockingAppointmentRepo) UpdateStatus(_ context.Context, _ *sqlx.Tx, _ uuid.UUID, _, _ model.AppointmentStatus, _ *string) error {
	return nil
}

type weekdayScheduleRepo struct {
	entries map[int]*model.WeeklyScheduleEntry
}

func (f *weekdayScheduleRepo) UpsertWeeklyEntry(_ context.Context, entry *model.WeeklyScheduleEntry) error {
	f.entries[entry.DayOfWeek] = entry
	return nil
}

func (f *weekdayScheduleRepo) ListWeeklyEntries(_ context.Context, _ uuid.UUID) ([]*model.WeeklyScheduleEntry, error) {
	return nil, nil
}

func (f *weekdayScheduleRepo) GetWeeklyEntry(_ context.Context, _ uuid.UUID, dayOfWeek int) (*model.WeeklyScheduleEntry, error) {
	return f.entries[dayOfWeek], nil
}

func (f *weekdayScheduleRepo) CreateSpecialDay(_ context.Context, _ *model.SpecialDay) error { return nil }

func (f *weekdayScheduleRepo) GetSpecialDay(_ context.Context, _ uuid.UUID, _ time.Time) (*model.SpecialDay, error) {
	return nil, nil
}

func (f *weekdayScheduleRepo) ListSpecialDays(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*model.SpecialDay, error) {
	return nil, nil
}

func (f *weekdayScheduleRepo) DeleteSpecialDay(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

// newBookingService wires up a service over a Mon-Fri 09:00-18:00
// template and an empty appointment book.
func newBookingService() (*Service, *lockingAppointmentRepo) {
	schedRepo := &weekdayScheduleRepo{entries: make(map[int]*model.WeeklyScheduleEntry)}
	for day := 1; day <= 5; day++ {
		schedRepo.entries[day] = &model.WeeklyScheduleEntry{
			DayOfWeek: day,
			StartTime: "09:00:00",
			EndTime:   "18:00:00",
			IsActive:  true,
		}
	}

	repo := &lockingAppointmentRepo{}
	return NewService(repo, schedule.NewService(schedRepo), testMetrics), repo
}

func bookingRequest(providerID uuid.UUID, start, end time.Time) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		ProviderID: providerID,
		PatientID:  uuid.New(),
		StartTime:  start,
		EndTime:    end,
	}
}

func TestTryBook(t *testing.T) {
	svc, repo := newBookingService()
	providerID := uuid.New()

	apt, err := svc.TryBook(context.Background(), bookingRequest(providerID, mondayAt(10, 0), mondayAt(10, 30)))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Len(t, repo.appointments, 1)
}

func TestTryBookInvalidInterval(t *testing.T) {
	svc, repo := newBookingService()
	providerID := uuid.New()

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{name: "inverted interval", start: mondayAt(10, 30), end: mondayAt(10, 0)},
		{name: "zero-length interval", start: mondayAt(10, 0), end: mondayAt(10, 0)},
		{name: "crosses midnight", start: mondayAt(23, 0), end: mondayAt(23, 30).Add(time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.TryBook(context.Background(), bookingRequest(providerID, tt.start, tt.end))
			assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidInterval))
		})
	}
	assert.Empty(t, repo.appointments)
}

func TestTryBookOutsideWorkingHours(t *testing.T) {
	svc, repo := newBookingService()
	providerID := uuid.New()
	sunday := mondayAt(10, 0).AddDate(0, 0, -1)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{name: "starts before opening", start: mondayAt(8, 30), end: mondayAt(9, 0)},
		{name: "straddles opening", start: mondayAt(8, 45), end: mondayAt(9, 15)},
		{name: "ends after closing", start: mondayAt(17, 45), end: mondayAt(18, 15)},
		{name: "non-working day", start: sunday, end: sunday.Add(30 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.TryBook(context.Background(), bookingRequest(providerID, tt.start, tt.end))
			assert.True(t, apperrors.IsCode(err, apperrors.ErrOutsideWorkingHours))
		})
	}
	assert.Empty(t, repo.appointments)
}

func TestTryBookConflict(t *testing.T) {
	svc, _ := newBookingService()
	providerID := uuid.New()

	_, err := svc.TryBook(context.Background(), bookingRequest(providerID, mondayAt(10, 0), mondayAt(10, 30)))
	require.NoError(t, err)

	_, err = svc.TryBook(context.Background(), bookingRequest(providerID, mondayAt(10, 15), mondayAt(10, 45)))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotConflict))
}

func TestTryBookTouchingIntervalsBothSucceed(t *testing.T) {
	svc, repo := newBookingService()
	providerID := uuid.New()

	_, err := svc.TryBook(context.Background(), bookingRequest(providerID, mondayAt(10, 0), mondayAt(10, 30)))
	require.NoError(t, err)

	_, err = svc.TryBook(context.Background(), bookingRequest(providerID, mondayAt(10, 30), mondayAt(11, 0)))
	require.NoError(t, err)

	assert.Len(t, repo.appointments, 2)
}

func TestTryBookDifferentProvidersDoNotConflict(t *testing.T) {
	svc, repo := newBookingService()

	_, err := svc.TryBook(context.Background(), bookingRequest(uuid.New(), mondayAt(10, 0), mondayAt(10, 30)))
	require.NoError(t, err)

	_, err = svc.TryBook(context.Background(), bookingRequest(uuid.New(), mondayAt(10, 0), mondayAt(10, 30)))
	require.NoError(t, err)

	assert.Len(t, repo.appointments, 2)
}

func TestTryBookConcurrentSameSlot(t *testing.T) {
	svc, repo := newBookingService()
	providerID := uuid.New()

	const attempts = 16
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.TryBook(context.Background(), bookingRequest(providerID, mondayAt(10, 0), mondayAt(10, 30)))
		}(i)
	}
	wg.Wait()

	var booked, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			booked++
		case apperrors.IsCode(err, apperrors.ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, booked, "exactly one concurrent attempt may win the slot")
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, repo.appointments, 1)
}
