package adaptor

import (
	"net/http"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/usecase"
	"hotel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking *BookingHandler
	Room    *RoomHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking: NewBookingHandler(service.Booking, log),
		Room:    NewRoomHandler(service.Room, log),
	}
}

// handleServiceError maps an error kind to its status. Storage and
// unclassified errors never expose their cause.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, operation string) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("operation", operation),
		zap.String("request_id", utils.GetRequestIDFromContext(r.Context())),
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		log.Warn(operation+" validation failed", fields...)
		utils.ResponseBadRequest(w, apperror.MessageOf(err, "Invalid request"), nil)

	case apperror.KindAvailability:
		log.Warn(operation+" failed - rooms unavailable", fields...)
		utils.ResponseBadRequest(w, apperror.MessageOf(err, "Rooms unavailable"), nil)

	case apperror.KindNotFound:
		log.Warn(operation+" failed - not found", fields...)
		utils.ResponseNotFound(w, apperror.MessageOf(err, "Not found"))

	case apperror.KindConflict:
		log.Error(operation+" failed - inventory conflict", fields...)
		utils.ResponseConflict(w, apperror.MessageOf(err, "Conflict"))

	default:
		log.Error(operation+" failed", fields...)
		utils.ResponseInternalError(w, apperror.MessageOf(err, "Internal server error"))
	}
}
