package request

// Upper bounds keep counter arithmetic far from int overflow.
type RoomSelectionRequest struct {
	Type   string `json:"type" validate:"required"`
	Rooms  int    `json:"rooms" validate:"required,min=1,max=1000"`
	Guests int    `json:"guests" validate:"required,min=1,max=10000"`
}

type CreateBookingRequest struct {
	GuestName  string                 `json:"guestName" validate:"required"`
	GuestEmail string                 `json:"guestEmail" validate:"required,email"`
	GuestCount int                    `json:"guestCount" validate:"required,min=1,max=10000"`
	RoomTypes  []RoomSelectionRequest `json:"roomTypes" validate:"required,min=1,dive"`
	CheckIn    string                 `json:"checkIn" validate:"required"`
	CheckOut   string                 `json:"checkOut" validate:"required"`
}

// UpdateBookingRequest replaces only the fields that are present.
type UpdateBookingRequest struct {
	GuestName  *string                `json:"guestName,omitempty" validate:"omitempty,min=1"`
	GuestEmail *string                `json:"guestEmail,omitempty" validate:"omitempty,email"`
	GuestCount *int                   `json:"guestCount,omitempty" validate:"omitempty,min=1,max=10000"`
	RoomTypes  []RoomSelectionRequest `json:"roomTypes,omitempty" validate:"omitempty,min=1,dive"`
	CheckIn    *string                `json:"checkIn,omitempty" validate:"omitempty,min=1"`
	CheckOut   *string                `json:"checkOut,omitempty" validate:"omitempty,min=1"`
}
