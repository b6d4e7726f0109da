// Package event publishes booking lifecycle events to the message broker.
package event

import (
	"context"
	"time"

	"hotel-booking/internal/inventory"
)

type Type string

const (
	TypeBookingCreated Type = "booking.created"
	TypeBookingUpdated Type = "booking.updated"
	TypeBookingDeleted Type = "booking.deleted"
)

// BookingEvent is emitted after a lifecycle operation has committed.
type BookingEvent struct {
	Type       Type              `json:"type"`
	BookingID  string            `json:"bookingId"`
	GuestEmail string            `json:"guestEmail"`
	CheckIn    string            `json:"checkIn"`
	CheckOut   string            `json:"checkOut"`
	TotalPrice float64           `json:"totalPrice"`
	Deltas     []inventory.Delta `json:"deltas"`
	OccurredAt time.Time         `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error {
	return nil
}
