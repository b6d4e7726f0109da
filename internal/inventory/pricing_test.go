package inventory

import (
	"testing"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		in, out  string
		expected int
		err      error
	}{
		{"two nights", "2024-06-01", "2024-06-03", 2, nil},
		{"month boundary", "2024-06-30", "2024-07-01", 1, nil},
		{"partial day rounds up", "2024-06-01T14:00:00Z", "2024-06-02T11:00:00Z", 1, nil},
		{"same day", "2024-06-01", "2024-06-01", 0, apperror.ErrInvalidDateRange},
		{"reversed", "2024-06-03", "2024-06-01", 0, apperror.ErrInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nights, err := Nights(tt.in, tt.out)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, nights)
		})
	}
}

func TestNights_BadInput(t *testing.T) {
	_, err := Nights("june first", "2024-06-03")

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrInvalidDateRange)
}

func TestTotalPrice(t *testing.T) {
	calc := NewCalculator(MustDefaultCatalog())

	price, err := calc.TotalPrice([]entity.RoomSelection{
		{Type: "enkel", Rooms: 2, Guests: 2},
		{Type: "SVIT", Rooms: 1, Guests: 3},
	}, "2024-06-01", "2024-06-04")

	require.NoError(t, err)
	assert.Equal(t, (500.0*2+1500.0)*3, price)
}

func TestTotalPrice_UnknownType(t *testing.T) {
	calc := NewCalculator(MustDefaultCatalog())

	_, err := calc.TotalPrice([]entity.RoomSelection{{Type: "loft", Rooms: 1, Guests: 1}}, "2024-06-01", "2024-06-02")

	assert.ErrorIs(t, err, apperror.ErrUnknownRoomType)
}
