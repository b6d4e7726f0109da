package repository

import (
	"context"

	"hotel-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Booking BookingRepository
	Room    RoomRepository
	Ledger  LedgerRepository

	store database.Store
}

func NewRepository(store database.Store, log *zap.Logger) *Repository {
	return &Repository{
		Booking: NewBookingRepository(store, log),
		Room:    NewRoomRepository(store, log),
		Ledger:  NewLedgerRepository(store, log),
		store:   store,
	}
}

// Transact commits ops built by the individual repositories as one unit.
func (r *Repository) Transact(ctx context.Context, ops []database.Op) error {
	return r.store.Transact(ctx, ops)
}
