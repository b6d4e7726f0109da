package inventory

import (
	"context"
	"errors"
	"math"
	"testing"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRooms map[string]*entity.RoomInventory

func (s stubRooms) FindByType(_ context.Context, roomType string) (*entity.RoomInventory, error) {
	return s[roomType], nil
}

type stubBookings struct {
	bookings []*entity.Booking
	err      error
}

func (s stubBookings) FindConfirmedByRoomType(_ context.Context, roomType string) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, b := range s.bookings {
		if b.Includes(roomType) {
			out = append(out, b)
		}
	}
	return out, s.err
}

func booking(selections ...entity.RoomSelection) *entity.Booking {
	return &entity.Booking{RoomTypes: selections, Status: entity.BookingStatusConfirmed}
}

func TestAvailabilityChecker_ScansBookingsNotCounter(t *testing.T) {
	// stored counter says 0, bookings say 2
	rooms := stubRooms{"enkel": {RoomType: "enkel", TotalRooms: 5, BookedRooms: 0}}
	bookings := stubBookings{bookings: []*entity.Booking{
		booking(entity.RoomSelection{Type: "enkel", Rooms: 2, Guests: 2}),
		booking(entity.RoomSelection{Type: "svit", Rooms: 1, Guests: 1}),
	}}
	c := NewAvailabilityChecker(rooms, bookings)

	ok, err := c.Check(context.Background(), "enkel", 3)
	require.NoError(t, err)
	assert.True(t, ok.Available)
	assert.Equal(t, 2, ok.CurrentlyBooked)

	full, err := c.Check(context.Background(), "ENKEL", 4)
	require.NoError(t, err)
	assert.False(t, full.Available)
	assert.Nil(t, full.Reason)
	assert.Equal(t, 3, full.Free())
	assert.Contains(t, full.Message, "requested 4, currently booked 2, total 5, available 3")
}

func TestAvailabilityChecker_MissingRecord(t *testing.T) {
	c := NewAvailabilityChecker(stubRooms{}, stubBookings{})

	result, err := c.Check(context.Background(), "svit", 1)

	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.ErrorIs(t, result.Reason, apperror.ErrRoomTypeNotFound)
}

func TestAvailabilityChecker_ScanFailure(t *testing.T) {
	rooms := stubRooms{"enkel": {RoomType: "enkel", TotalRooms: 5}}
	c := NewAvailabilityChecker(rooms, stubBookings{err: errors.New("timeout")})

	_, err := c.Check(context.Background(), "enkel", 1)

	assert.Error(t, err)
}

func TestAvailabilityChecker_HugeDeltaIsUnavailable(t *testing.T) {
	rooms := stubRooms{"enkel": {RoomType: "enkel", TotalRooms: 5}}
	bookings := stubBookings{bookings: []*entity.Booking{
		booking(entity.RoomSelection{Type: "enkel", Rooms: 1, Guests: 1}),
	}}
	c := NewAvailabilityChecker(rooms, bookings)

	result, err := c.Check(context.Background(), "enkel", math.MaxInt)

	require.NoError(t, err)
	assert.False(t, result.Available)
}
