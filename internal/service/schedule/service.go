package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking-api/internal/model"
	"github.com/clinicore/booking-api/internal/repository"
	apperrors "github.com/clinicore/booking-api/pkg/errors"
)

// Service owns the recurring weekly template and the date-specific
// overrides, and resolves the effective working window for a date.
type Service struct {
	repo repository.ScheduleRepository
}

func NewService(repo repository.ScheduleRepository) *Service {
	return &Service{repo: repo}
}

// UpsertWeeklySchedule applies a bulk, idempotent upsert keyed on
// (provider, day_of_week) and returns the provider's full resulting
// schedule. The whole batch is validated before any row is written.
func (s *Service) UpsertWeeklySchedule(ctx context.Context, providerID uuid.UUID, entries []model.WeeklyScheduleEntryRequest) ([]*model.WeeklyScheduleEntry, error) {
	for _, e := range entries {
		if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
			return nil, apperrors.InvalidDayOfWeek(e.DayOfWeek)
		}
		if _, _, err := model.ParseClock(e.StartTime); err != nil {
			return nil, apperrors.BadRequest("invalid start_time", err)
		}
		if _, _, err := model.ParseClock(e.EndTime); err != nil {
			return nil, apperrors.BadRequest("invalid end_time", err)
		}
	}

	for _, e := range entries {
		active := true
		if e.IsActive != nil {
			active = *e.IsActive
		}
		entry := &model.WeeklyScheduleEntry{
			ProviderID: providerID,
			DayOfWeek:  e.DayOfWeek,
			StartTime:  e.StartTime,
			EndTime:    e.EndTime,
			IsActive:   active,
		}
		if err := s.repo.UpsertWeeklyEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to upsert schedule entry: %w", err)
		}
	}

	return s.repo.ListWeeklyEntries(ctx, providerID)
}

func (s *Service) ListWeeklySchedule(ctx context.Context, providerID uuid.UUID) ([]*model.WeeklyScheduleEntry, error) {
	return s.repo.ListWeeklyEntries(ctx, providerID)
}

// CreateSpecialDay registers a date override. A second special day for
// the same (provider, date) is rejected; callers must delete the
// existing one first.
func (s *Service) CreateSpecialDay(ctx context.Context, providerID uuid.UUID, req *model.CreateSpecialDayRequest) (*model.SpecialDay, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date, expected YYYY-MM-DD", err)
	}

	dayType := model.SpecialDayType(req.Type)
	if !dayType.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid special day type %q", req.Type), nil)
	}

	if req.StartTime != nil {
		if _, _, err := model.ParseClock(*req.StartTime); err != nil {
			return nil, apperrors.BadRequest("invalid start_time", err)
		}
	}
	if req.EndTime != nil {
		if _, _, err := model.ParseClock(*req.EndTime); err != nil {
			return nil, apperrors.BadRequest("invalid end_time", err)
		}
	}
	if (req.StartTime == nil) != (req.EndTime == nil) {
		return nil, apperrors.BadRequest("start_time and end_time must be given together", nil)
	}

	day := &model.SpecialDay{
		ProviderID:  providerID,
		Date:        date,
		Type:        dayType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}
	if err := s.repo.CreateSpecialDay(ctx, day); err != nil {
		return nil, err
	}
	return day, nil
}

func (s *Service) ListSpecialDays(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]*model.SpecialDay, error) {
	return s.repo.ListSpecialDays(ctx, providerID, from, to)
}

func (s *Service) DeleteSpecialDay(ctx context.Context, providerID uuid.UUID, date time.Time) error {
	return s.repo.DeleteSpecialDay(ctx, providerID, date)
}

// EffectiveWindow resolves the working window for one date. Special
// days override the weekly template: holiday, vacation and sick_leave
// remove all availability; a working_day with explicit hours replaces
// the template hours; a working_day without hours keeps them. A nil
// window means the provider does not work that date.
func (s *Service) EffectiveWindow(ctx context.Context, providerID uuid.UUID, date time.Time) (*model.TimeWindow, error) {
	special, err := s.repo.GetSpecialDay(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve special day: %w", err)
	}

	if special != nil {
		if special.Type.ZeroesAvailability() {
			return nil, nil
		}
		if special.StartTime != nil && special.EndTime != nil {
			return windowFromClocks(*special.StartTime, *special.EndTime, date)
		}
		// working_day without explicit hours falls back to the template
	}

	entry, err := s.repo.GetWeeklyEntry(ctx, providerID, int(date.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve weekly schedule: %w", err)
	}
	if entry == nil || !entry.IsActive {
		return nil, nil
	}
	return windowFromClocks(entry.StartTime, entry.EndTime, date)
}

func windowFromClocks(startClock, endClock string, date time.Time) (*model.TimeWindow, error) {
	start, err := model.ClockOnDate(startClock, date)
	if err != nil {
		return nil, err
	}
	end, err := model.ClockOnDate(endClock, date)
	if err != nil {
		return nil, err
	}
	return &model.TimeWindow{Start: start, End: end}, nil
}
