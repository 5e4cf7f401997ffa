package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking-api/internal/model"
	"github.com/clinicore/booking-api/internal/service/schedule"
	"github.com/clinicore/booking-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "availability")

type fakeProviderRepo struct {
	duration      time.Duration
	durationCalls int
}

func (f *fakeProviderRepo) Get(_ context.Context, id uuid.UUID) (*model.Provider, error) {
	return &model.Provider{Base: model.Base{ID: id}}, nil
}

func (f *fakeProviderRepo) GetSlotDuration(_ context.Context, _ uuid.UUID) (time.Duration, error) {
	f.durationCalls++
	return f.duration, nil
}

type fakeAppointmentRepo struct {
	appointments []*model.Appointment
}

func (f *fakeAppointmentRepo) Book(_ context.Context, apt *model.Appointment) error {
	f.appointments = append(f.appointments, apt)
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeAppointmentRepo) ListForProviderDate(_ context.Context, providerID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if apt.ProviderID == providerID && apt.StartTime.Year() == date.Year() && apt.StartTime.YearDay() == date.YearDay() {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, _ *sqlx.Tx, _ uuid.UUID, _, _ model.AppointmentStatus, _ *string) error {
	return nil
}

type fakeScheduleRepo struct {
	weekly   map[int]*model.WeeklyScheduleEntry
	specials map[string]*model.SpecialDay
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		weekly:   make(map[int]*model.WeeklyScheduleEntry),
		specials: make(map[string]*model.SpecialDay),
	}
}

func (f *fakeScheduleRepo) UpsertWeeklyEntry(_ context.Context, entry *model.WeeklyScheduleEntry) error {
	f.weekly[entry.DayOfWeek] = entry
	return nil
}

func (f *fakeScheduleRepo) ListWeeklyEntries(_ context.Context, _ uuid.UUID) ([]*model.WeeklyScheduleEntry, error) {
	var out []*model.WeeklyScheduleEntry
	for _, e := range f.weekly {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetWeeklyEntry(_ context.Context, _ uuid.UUID, dayOfWeek int) (*model.WeeklyScheduleEntry, error) {
	return f.weekly[dayOfWeek], nil
}

func (f *fakeScheduleRepo) CreateSpecialDay(_ context.Context, day *model.SpecialDay) error {
	f.specials[day.Date.Format("2006-01-02")] = day
	return nil
}

func (f *fakeScheduleRepo) GetSpecialDay(_ context.Context, _ uuid.UUID, date time.Time) (*model.SpecialDay, error) {
	return f.specials[date.Format("2006-01-02")], nil
}

func (f *fakeScheduleRepo) ListSpecialDays(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*model.SpecialDay, error) {
	var out []*model.SpecialDay
	for _, d := range f.specials {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeScheduleRepo) DeleteSpecialDay(_ context.Context, _ uuid.UUID, date time.Time) error {
	delete(f.specials, date.Format("2006-01-02"))
	return nil
}

func newTestService(t *testing.T, providers *fakeProviderRepo, appointments *fakeAppointmentRepo, schedRepo *fakeScheduleRepo) *Service {
	t.Helper()
	return NewService(providers, appointments, schedule.NewService(schedRepo), testMetrics)
}

func TestGetAvailability(t *testing.T) {
	providerID := uuid.New()

	schedRepo := newFakeScheduleRepo()
	schedRepo.weekly[1] = &model.WeeklyScheduleEntry{
		ProviderID: providerID,
		DayOfWeek:  1,
		StartTime:  "09:00:00",
		EndTime:    "18:00:00",
		IsActive:   true,
	}

	appointments := &fakeAppointmentRepo{appointments: []*model.Appointment{
		{
			Base:       model.Base{ID: uuid.New()},
			ProviderID: providerID,
			StartTime:  mondayAt(10, 0),
			EndTime:    mondayAt(10, 30),
			Status:     model.AppointmentStatusScheduled,
		},
	}}

	svc := newTestService(t, &fakeProviderRepo{duration: 30 * time.Minute}, appointments, schedRepo)

	slots, err := svc.GetAvailability(context.Background(), providerID, monday)
	require.NoError(t, err)
	require.Len(t, slots, 18)

	assert.Equal(t, mondayAt(9, 0), slots[0].Start)
	assert.Equal(t, mondayAt(17, 30), slots[17].Start)
	assert.False(t, slots[2].Available, "10:00-10:30 is booked")
	assert.True(t, slots[3].Available)
}

func TestGetAvailabilityNonWorkingDate(t *testing.T) {
	providerID := uuid.New()

	// No weekly entry for Monday at all.
	svc := newTestService(t, &fakeProviderRepo{duration: 30 * time.Minute}, &fakeAppointmentRepo{}, newFakeScheduleRepo())

	slots, err := svc.GetAvailability(context.Background(), providerID, monday)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestGetAvailabilityHoliday(t *testing.T) {
	providerID := uuid.New()

	schedRepo := newFakeScheduleRepo()
	schedRepo.weekly[1] = &model.WeeklyScheduleEntry{
		ProviderID: providerID,
		DayOfWeek:  1,
		StartTime:  "09:00:00",
		EndTime:    "18:00:00",
		IsActive:   true,
	}
	schedRepo.specials[monday.Format("2006-01-02")] = &model.SpecialDay{
		ProviderID: providerID,
		Date:       monday,
		Type:       model.SpecialDayHoliday,
	}

	svc := newTestService(t, &fakeProviderRepo{duration: 30 * time.Minute}, &fakeAppointmentRepo{}, schedRepo)

	slots, err := svc.GetAvailability(context.Background(), providerID, monday)
	require.NoError(t, err)
	assert.Empty(t, slots, "holiday removes all availability")
}

func TestGetAvailabilityCachesSlotDuration(t *testing.T) {
	providerID := uuid.New()

	schedRepo := newFakeScheduleRepo()
	schedRepo.weekly[1] = &model.WeeklyScheduleEntry{
		ProviderID: providerID,
		DayOfWeek:  1,
		StartTime:  "09:00:00",
		EndTime:    "12:00:00",
		IsActive:   true,
	}

	providers := &fakeProviderRepo{duration: 30 * time.Minute}
	svc := newTestService(t, providers, &fakeAppointmentRepo{}, schedRepo)

	for i := 0; i < 3; i++ {
		_, err := svc.GetAvailability(context.Background(), providerID, monday)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, providers.durationCalls, "slot duration should be served from cache after the first call")
}
