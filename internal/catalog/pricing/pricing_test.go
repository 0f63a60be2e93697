package pricing

import (
	"testing"

	"github.com/MNhat168/sport-zone-sub002/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testField() *model.Field {
	return &model.Field{
		BasePrice: 200000,
		PeakRate:  1.5,
		PeakStart: "17:00",
		PeakEnd:   "21:00",
		Amenities: []model.Amenity{
			{Name: "lighting", Fee: 30000},
			{Name: "equipment", Fee: 50000},
		},
	}
}

func TestQuoteOffPeakWeekday(t *testing.T) {
	// 2025-11-26 is a Wednesday.
	snap, err := Quote(testField(), "2025-11-26", "08:00", "10:00", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(400000), snap.Base)
	assert.Equal(t, 1.0, snap.Multiplier)
	assert.Equal(t, int64(0), snap.AmenitiesFee)
	assert.Equal(t, int64(400000), snap.Total)
}

func TestQuotePeakHours(t *testing.T) {
	snap, err := Quote(testField(), "2025-11-26", "18:00", "20:00", nil)
	require.NoError(t, err)

	assert.Equal(t, 1.5, snap.Multiplier)
	assert.Equal(t, int64(600000), snap.Total)
}

func TestQuoteWeekendStacksWithPeak(t *testing.T) {
	// 2025-11-29 is a Saturday.
	snap, err := Quote(testField(), "2025-11-29", "18:00", "20:00", nil)
	require.NoError(t, err)

	assert.InDelta(t, 1.8, snap.Multiplier, 1e-9)
	assert.Equal(t, int64(720000), snap.Total)
}

func TestQuoteAmenities(t *testing.T) {
	snap, err := Quote(testField(), "2025-11-26", "08:00", "09:00", []string{"lighting", "equipment"})
	require.NoError(t, err)

	assert.Equal(t, int64(80000), snap.AmenitiesFee)
	assert.Equal(t, int64(280000), snap.Total)

	// Unknown amenity names contribute nothing.
	snap, err = Quote(testField(), "2025-11-26", "08:00", "09:00", []string{"sauna"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.AmenitiesFee)
}

func TestQuoteDeterministic(t *testing.T) {
	a, err := Quote(testField(), "2025-11-29", "18:00", "20:00", []string{"lighting"})
	require.NoError(t, err)
	b, err := Quote(testField(), "2025-11-29", "18:00", "20:00", []string{"lighting"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestQuoteRejectsBadInput(t *testing.T) {
	_, err := Quote(testField(), "2025-11-26", "20:00", "18:00", nil)
	assert.Error(t, err)

	_, err = Quote(testField(), "november", "08:00", "10:00", nil)
	assert.Error(t, err)
}

func TestQuoteCoach(t *testing.T) {
	coach := &model.Coach{HourlyRate: 300000}
	snap, err := QuoteCoach(coach, "18:00", "19:30")
	require.NoError(t, err)

	assert.Equal(t, int64(450000), snap.Base)
	assert.Equal(t, 1.0, snap.Multiplier)
	assert.Equal(t, int64(450000), snap.Total)
}
