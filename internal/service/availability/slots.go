package availability

import (
	"time"

	"github.com/clinicore/booking-api/internal/model"
)

// GenerateSlots turns a working window into the ordered sequence of
// fixed-duration candidate slots for one date. Slots are contiguous
// (slot[i].End == slot[i+1].Start) and a trailing slot that would
// exceed the window is never emitted, so a window that is not an exact
// multiple of the duration drops the remainder. A nil, zero-length or
// inverted window yields an empty sequence.
//
// A slot is unavailable when it overlaps any of the given appointments
// under the shared half-open test. Callers pass the provider's
// non-cancelled appointments for the date; the result is a snapshot,
// never a reservation.
func GenerateSlots(window *model.TimeWindow, duration time.Duration, appointments []*model.Appointment) []model.Slot {
	if window == nil || duration <= 0 || !window.Start.Before(window.End) {
		return []model.Slot{}
	}

	slots := make([]model.Slot, 0, window.End.Sub(window.Start)/duration)
	for start := window.Start; ; start = start.Add(duration) {
		end := start.Add(duration)
		if end.After(window.End) {
			break
		}
		slots = append(slots, model.Slot{
			Start:     start,
			End:       end,
			Available: !overlapsAny(start, end, appointments),
		})
	}
	return slots
}

func overlapsAny(start, end time.Time, appointments []*model.Appointment) bool {
	for _, apt := range appointments {
		if apt.Status == model.AppointmentStatusCancelled {
			continue
		}
		if model.Overlaps(start, end, apt.StartTime, apt.EndTime) {
			return true
		}
	}
	return false
}
