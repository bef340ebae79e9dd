package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/permit-log/backend/internal/domain"
)

func finishedTrip(t *testing.T, start, end string) domain.Trip {
	t.Helper()
	e := at(t, end)
	return domain.Trip{
		StartTime: at(t, start),
		EndTime:   &e,
		IsActive:  false,
	}
}

func TestFinalize_DurationAndNight(t *testing.T) {
	w := window(t)

	trip := finishedTrip(t, "2024-01-01 20:00", "2024-01-01 22:00")
	trip.Finalize(w)

	assert.Equal(t, 120, trip.Duration)
	assert.True(t, trip.IsNight)
}

func TestFinalize_DayTrip(t *testing.T) {
	w := window(t)

	trip := finishedTrip(t, "2024-01-01 14:00", "2024-01-01 15:00")
	trip.Finalize(w)

	assert.Equal(t, 60, trip.Duration)
	assert.False(t, trip.IsNight)
}

// Duration is the floor of elapsed minutes: 5m59s of driving is 5 minutes.
func TestFinalize_FloorsPartialMinutes(t *testing.T) {
	w := window(t)

	start := at(t, "2024-01-01 10:00")
	end := start.Add(5*time.Minute + 59*time.Second)
	trip := domain.Trip{StartTime: start, EndTime: &end}
	trip.Finalize(w)

	assert.Equal(t, 5, trip.Duration)
}

func TestFinalize_RunningTripResetsDerived(t *testing.T) {
	w := window(t)

	trip := domain.Trip{StartTime: at(t, "2024-01-01 22:00"), IsActive: true}
	trip.IsNight = true // stale value a caller might have left behind
	trip.Duration = 42
	trip.Finalize(w)

	assert.Equal(t, 0, trip.Duration)
	assert.False(t, trip.IsNight)
}

func TestCountable(t *testing.T) {
	tests := []struct {
		name     string
		approved bool
		active   bool
		want     bool
	}{
		{"approved and finished", true, false, true},
		{"unapproved", false, false, false},
		{"approved but running", true, true, false},
		{"unapproved and running", false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := domain.Trip{IsApproved: tt.approved, IsActive: tt.active}
			assert.Equal(t, tt.want, trip.Countable())
		})
	}
}

func TestElapsed(t *testing.T) {
	start := at(t, "2024-01-01 10:00")
	trip := domain.Trip{StartTime: start, IsActive: true}

	require.Equal(t, 3, trip.Elapsed(start.Add(3*time.Minute+30*time.Second)))
	require.Equal(t, 6, trip.Elapsed(start.Add(6*time.Minute)))
}
