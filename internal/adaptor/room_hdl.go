package adaptor

import (
	"net/http"

	"hotel-booking/internal/usecase"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RoomHandler struct {
	service usecase.RoomService
	log     *zap.Logger
}

func NewRoomHandler(service usecase.RoomService, log *zap.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		log:     log.With(zap.String("handler", "room")),
	}
}

// ListRooms handles GET /api/rooms
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err, "list rooms")
		return
	}

	utils.ResponseSuccess(w, "success", rooms)
}

// GetRoom handles GET /api/rooms/{type}
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.GetRoom(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		handleServiceError(w, r, h.log, err, "get room")
		return
	}

	utils.ResponseSuccess(w, "success", room)
}

// ReconcileRooms handles POST /api/rooms/reconcile
func (h *RoomHandler) ReconcileRooms(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ReconcileRooms(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err, "reconcile rooms")
		return
	}

	utils.ResponseSuccess(w, "Room inventory reconciled", results)
}

// ListLedger handles GET /api/ledger?bookingId=
func (h *RoomHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListLedger(r.Context(), r.URL.Query().Get("bookingId"))
	if err != nil {
		handleServiceError(w, r, h.log, err, "list ledger")
		return
	}

	utils.ResponseSuccess(w, "success", entries)
}
