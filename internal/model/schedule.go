package model

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyScheduleEntry is one row of a provider's recurring weekly
// template. At most one active entry exists per (provider, day_of_week);
// an absent weekday means the provider does not work that day.
type WeeklyScheduleEntry struct {
	Base
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	IsActive   bool      `db:"is_active" json:"is_active"`
}

type SpecialDayType string

const (
	SpecialDayHoliday    SpecialDayType = "holiday"
	SpecialDayVacation   SpecialDayType = "vacation"
	SpecialDaySickLeave  SpecialDayType = "sick_leave"
	SpecialDayWorkingDay SpecialDayType = "working_day"
)

// ZeroesAvailability reports whether this special day type removes all
// availability for the date regardless of the weekly template.
func (t SpecialDayType) ZeroesAvailability() bool {
	switch t {
	case SpecialDayHoliday, SpecialDayVacation, SpecialDaySickLeave:
		return true
	}
	return false
}

func (t SpecialDayType) Valid() bool {
	switch t {
	case SpecialDayHoliday, SpecialDayVacation, SpecialDaySickLeave, SpecialDayWorkingDay:
		return true
	}
	return false
}

// SpecialDay is a date-specific override of the weekly template,
// unique per (provider, date).
type SpecialDay struct {
	Base
	ProviderID  uuid.UUID      `db:"provider_id" json:"provider_id"`
	Date        time.Time      `db:"date" json:"date"`
	Type        SpecialDayType `db:"type" json:"type"`
	StartTime   *string        `db:"start_time" json:"start_time,omitempty"`
	EndTime     *string        `db:"end_time" json:"end_time,omitempty"`
	Description string         `db:"description" json:"description,omitempty"`
}

type WeeklyScheduleEntryRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time" binding:"required,clock"`
	IsActive  *bool  `json:"is_active"`
}

type UpsertWeeklyScheduleRequest struct {
	Entries []WeeklyScheduleEntryRequest `json:"entries" binding:"required,dive"`
}

type CreateSpecialDayRequest struct {
	Date        string  `json:"date" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=holiday vacation sick_leave working_day"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Description string  `json:"description" binding:"max=500"`
}
