package inventory

import (
	"context"
	"fmt"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/data/entity"
)

// RoomReader reads inventory records. FindByType returns nil, nil when absent.
type RoomReader interface {
	FindByType(ctx context.Context, roomType string) (*entity.RoomInventory, error)
}

// BookingScanner lists confirmed bookings that include a room type.
type BookingScanner interface {
	FindConfirmedByRoomType(ctx context.Context, roomType string) ([]*entity.Booking, error)
}

// Availability is the outcome of a check. Reason is set when Available is
// false: ErrRoomTypeNotFound, or nil when the delta simply does not fit.
type Availability struct {
	RoomType        string
	Available       bool
	Requested       int
	CurrentlyBooked int
	TotalRooms      int
	Reason          error
	Message         string
}

// Free is the number of rooms left before the requested delta.
func (a Availability) Free() int {
	if free := a.TotalRooms - a.CurrentlyBooked; free > 0 {
		return free
	}
	return 0
}

// AvailabilityChecker recomputes booked rooms by scanning confirmed bookings
// instead of trusting the stored counter.
type AvailabilityChecker struct {
	rooms    RoomReader
	bookings BookingScanner
}

func NewAvailabilityChecker(rooms RoomReader, bookings BookingScanner) *AvailabilityChecker {
	return &AvailabilityChecker{rooms: rooms, bookings: bookings}
}

// Check decides whether delta more rooms of roomType fit. Only storage
// failures come back as error.
func (c *AvailabilityChecker) Check(ctx context.Context, roomType string, delta int) (Availability, error) {
	key := entity.NormalizeRoomType(roomType)
	result := Availability{RoomType: key, Requested: delta}

	room, err := c.rooms.FindByType(ctx, key)
	if err != nil {
		return result, fmt.Errorf("read inventory for %s: %w", key, err)
	}
	if room == nil {
		result.Reason = apperror.ErrRoomTypeNotFound
		result.Message = fmt.Sprintf("Room type %s not found", key)
		return result, nil
	}
	result.TotalRooms = room.TotalRooms

	booked, err := c.CurrentlyBooked(ctx, key)
	if err != nil {
		return result, err
	}
	result.CurrentlyBooked = booked

	if delta > room.TotalRooms-booked {
		result.Message = fmt.Sprintf("Not enough %s rooms available: requested %d, currently booked %d, total %d, available %d",
			key, delta, booked, room.TotalRooms, result.Free())
		return result, nil
	}

	result.Available = true
	return result, nil
}

// CurrentlyBooked sums rooms of roomType across all confirmed bookings.
func (c *AvailabilityChecker) CurrentlyBooked(ctx context.Context, roomType string) (int, error) {
	key := entity.NormalizeRoomType(roomType)

	bookings, err := c.bookings.FindConfirmedByRoomType(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("scan confirmed bookings for %s: %w", key, err)
	}

	total := 0
	for _, b := range bookings {
		total += b.RoomsByType()[key]
	}
	return total, nil
}
