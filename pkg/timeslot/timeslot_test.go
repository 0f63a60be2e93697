package timeslot

import (
	"testing"

	"github.com/MNhat168/sport-zone-sub002/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"18:00", 1080, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"09:60", 0, true},
		{"", 0, true},
		{"banana", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			got, err := ToMinutes(tt.clock)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd int
		want                           bool
	}{
		{"identical", 600, 720, 600, 720, true},
		{"contained", 600, 720, 630, 690, true},
		{"partial left", 600, 720, 540, 660, true},
		{"partial right", 600, 720, 660, 780, true},
		{"touching end does not conflict", 600, 720, 720, 780, false},
		{"touching start does not conflict", 600, 720, 540, 600, false},
		{"disjoint", 600, 720, 780, 840, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestConflicts(t *testing.T) {
	booked := []model.TimeSlot{
		{StartTime: "08:00", EndTime: "10:00"},
		{StartTime: "14:00", EndTime: "16:00"},
	}

	conflict, err := Conflicts("09:00", "11:00", booked)
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = Conflicts("10:00", "14:00", booked)
	require.NoError(t, err)
	assert.False(t, conflict, "interval exactly between two slots must be bookable")

	conflict, err = Conflicts("18:00", "20:00", nil)
	require.NoError(t, err)
	assert.False(t, conflict)

	_, err = Conflicts("25:00", "26:00", booked)
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	d, err := Duration("18:00", "20:00")
	require.NoError(t, err)
	assert.Equal(t, 120, d)

	_, err = Duration("20:00", "18:00")
	assert.Error(t, err)

	_, err = Duration("18:00", "18:00")
	assert.Error(t, err)
}

func TestWithin(t *testing.T) {
	ok, err := Within("08:00", "10:00", "06:00", "22:00")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Within("05:00", "07:00", "06:00", "22:00")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Within("21:00", "23:00", "06:00", "22:00")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Within("06:00", "22:00", "06:00", "22:00")
	require.NoError(t, err)
	assert.True(t, ok, "interval equal to the operating window is allowed")
}
