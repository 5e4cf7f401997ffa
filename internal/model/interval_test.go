package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		aStart   time.Time
		aEnd     time.Time
		bStart   time.Time
		bEnd     time.Time
		expected bool
	}{
		{
			name:   "identical intervals",
			aStart: at(10, 0), aEnd: at(10, 30),
			bStart: at(10, 0), bEnd: at(10, 30),
			expected: true,
		},
		{
			name:   "partial overlap",
			aStart: at(10, 0), aEnd: at(10, 30),
			bStart: at(10, 15), bEnd: at(10, 45),
			expected: true,
		},
		{
			name:   "contained interval",
			aStart: at(9, 0), aEnd: at(12, 0),
			bStart: at(10, 0), bEnd: at(10, 30),
			expected: true,
		},
		{
			name:   "touching at boundary is not overlap",
			aStart: at(10, 0), aEnd: at(10, 30),
			bStart: at(10, 30), bEnd: at(11, 0),
			expected: false,
		},
		{
			name:   "touching at boundary reversed",
			aStart: at(10, 30), aEnd: at(11, 0),
			bStart: at(10, 0), bEnd: at(10, 30),
			expected: false,
		},
		{
			name:   "disjoint intervals",
			aStart: at(9, 0), aEnd: at(9, 30),
			bStart: at(14, 0), bEnd: at(14, 30),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// The predicate is symmetric.
			assert.Equal(t, tt.expected, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{name: "api format", input: "09:30", wantHour: 9, wantMinute: 30},
		{name: "database format", input: "09:30:00", wantHour: 9, wantMinute: 30},
		{name: "midnight", input: "00:00", wantHour: 0, wantMinute: 0},
		{name: "end of day", input: "23:59", wantHour: 23, wantMinute: 59},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "missing minutes", input: "10", wantErr: true},
		{name: "garbage", input: "not a clock", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseClock(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
		})
	}
}

func TestClockOnDate(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	got, err := ClockOnDate("09:30", date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), got)

	_, err = ClockOnDate("25:00", date)
	assert.Error(t, err)
}
