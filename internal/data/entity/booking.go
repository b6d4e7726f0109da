package entity

import "strings"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
)

// RoomSelection is one (type, rooms, guests) line of a booking.
type RoomSelection struct {
	Type   string `json:"type"`
	Rooms  int    `json:"rooms"`
	Guests int    `json:"guests"`
}

type Booking struct {
	Base
	GuestName  string          `json:"guestName"`
	GuestEmail string          `json:"guestEmail"`
	GuestCount int             `json:"guestCount"`
	RoomTypes  []RoomSelection `json:"roomTypes"`
	CheckIn    string          `json:"checkIn"`
	CheckOut   string          `json:"checkOut"`
	Nights     int             `json:"nights"`
	TotalPrice float64         `json:"totalPrice"`
	TotalRooms int             `json:"totalRooms"`
	Status     BookingStatus   `json:"status"`
	// Version grows by one on every committed write.
	Version int64 `json:"version"`
}

// RoomsByType sums requested rooms per normalized room type.
func (b *Booking) RoomsByType() map[string]int {
	return SumRoomsByType(b.RoomTypes)
}

// Includes reports whether any selection of the booking references roomType.
func (b *Booking) Includes(roomType string) bool {
	for _, sel := range b.RoomTypes {
		if NormalizeRoomType(sel.Type) == NormalizeRoomType(roomType) {
			return true
		}
	}
	return false
}

func SumRoomsByType(selections []RoomSelection) map[string]int {
	out := make(map[string]int, len(selections))
	for _, sel := range selections {
		out[NormalizeRoomType(sel.Type)] += sel.Rooms
	}
	return out
}

// NormalizeRoomType makes room type lookups case-insensitive.
func NormalizeRoomType(roomType string) string {
	return strings.ToLower(strings.TrimSpace(roomType))
}
