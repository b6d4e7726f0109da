package response

import (
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/inventory"
)

type RoomSelectionResponse struct {
	Type   string `json:"type"`
	Rooms  int    `json:"rooms"`
	Guests int    `json:"guests"`
}

type BookingResponse struct {
	ID         string                  `json:"bookingId"`
	GuestName  string                  `json:"guestName"`
	GuestEmail string                  `json:"guestEmail"`
	GuestCount int                     `json:"guestCount"`
	RoomTypes  []RoomSelectionResponse `json:"roomTypes"`
	CheckIn    string                  `json:"checkIn"`
	CheckOut   string                  `json:"checkOut"`
	Nights     int                     `json:"nights"`
	TotalPrice float64                 `json:"totalPrice"`
	TotalRooms int                     `json:"totalRooms"`
	Status     entity.BookingStatus    `json:"status"`
	Version    int64                   `json:"version"`
	CreatedAt  time.Time               `json:"createdAt"`
	UpdatedAt  *time.Time              `json:"updatedAt,omitempty"`
}

// BookingMutationResponse is returned by update and delete, with the
// counter deltas that were applied.
type BookingMutationResponse struct {
	Booking BookingResponse   `json:"booking"`
	Deltas  []inventory.Delta `json:"deltas"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// Helper converters
func BookingToResponse(b *entity.Booking) BookingResponse {
	rooms := make([]RoomSelectionResponse, len(b.RoomTypes))
	for i, sel := range b.RoomTypes {
		rooms[i] = RoomSelectionResponse{Type: sel.Type, Rooms: sel.Rooms, Guests: sel.Guests}
	}

	return BookingResponse{
		ID:         b.ID,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		GuestCount: b.GuestCount,
		RoomTypes:  rooms,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Nights:     b.Nights,
		TotalPrice: b.TotalPrice,
		TotalRooms: b.TotalRooms,
		Status:     b.Status,
		Version:    b.Version,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
