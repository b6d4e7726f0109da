package entity

import (
	"time"
)

type Base struct {
	ID        string     `json:"bookingId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}
