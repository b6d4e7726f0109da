package entity

import "time"

type LedgerOperation string

const (
	LedgerOperationCreate    LedgerOperation = "create"
	LedgerOperationUpdate    LedgerOperation = "update"
	LedgerOperationDelete    LedgerOperation = "delete"
	LedgerOperationReconcile LedgerOperation = "reconcile"
)

// LedgerEntry records one committed counter delta.
type LedgerEntry struct {
	BookingID string          `json:"bookingId,omitempty"`
	RoomType  string          `json:"roomType"`
	Delta     int             `json:"delta"`
	Operation LedgerOperation `json:"operation"`
	CreatedAt time.Time       `json:"createdAt"`
}
