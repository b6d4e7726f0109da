package response

import (
	"time"

	"hotel-booking/internal/data/entity"
)

type RoomResponse struct {
	RoomType       string  `json:"roomType"`
	TotalRooms     int     `json:"totalRooms"`
	BookedRooms    int     `json:"bookedRooms"`
	AvailableRooms int     `json:"availableRooms"`
	Capacity       int     `json:"capacity"`
	PricePerNight  float64 `json:"pricePerNight"`
}

type ReconcileResponse struct {
	RoomType string `json:"roomType"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
	Delta    int    `json:"delta"`
}

type LedgerEntryResponse struct {
	BookingID string                 `json:"bookingId,omitempty"`
	RoomType  string                 `json:"roomType"`
	Delta     int                    `json:"delta"`
	Operation entity.LedgerOperation `json:"operation"`
	CreatedAt time.Time              `json:"createdAt"`
}

func LedgerEntryToResponse(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		BookingID: e.BookingID,
		RoomType:  e.RoomType,
		Delta:     e.Delta,
		Operation: e.Operation,
		CreatedAt: e.CreatedAt,
	}
}
