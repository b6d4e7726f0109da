package wire

import (
	"hotel-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireRoom(r chi.Router, roomHandler *adaptor.RoomHandler) {
	r.Route("/api/rooms", func(r chi.Router) {
		r.Get("/", roomHandler.ListRooms)
		r.Get("/{type}", roomHandler.GetRoom)

		// POST /api/rooms/reconcile - Reset counters from confirmed bookings
		r.Post("/reconcile", roomHandler.ReconcileRooms)
	})

	// GET /api/ledger - Counter deltas, optionally ?bookingId=
	r.Get("/api/ledger", roomHandler.ListLedger)
}
