package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/internal/event"
	"hotel-booking/internal/inventory"
	"hotel-booking/pkg/database"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	GetAllBookings(ctx context.Context) (*response.BookingListResponse, error)

	// Mutations return the counter deltas they committed
	UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*response.BookingMutationResponse, error)
	DeleteBooking(ctx context.Context, bookingID string) (*response.BookingMutationResponse, error)
}

type bookingService struct {
	repo      *repository.Repository
	rules     *Rules
	publisher event.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewBookingService(repo *repository.Repository, rules *Rules, publisher event.Publisher, log *zap.Logger) BookingService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		rules:     rules,
		publisher: publisher,
		log:       log.With(zap.String("service", "booking")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation(nil, "Validation failed: %s", utils.FormatValidationErrors(errs))
	}

	selections := toSelections(req.RoomTypes)
	if err := s.validateSelections(selections); err != nil {
		return nil, err
	}

	nights, price, err := s.quote(selections, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	deltas := inventory.Deltas(nil, selections)
	if err := s.checkAvailability(ctx, deltas); err != nil {
		return nil, err
	}

	now := s.now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New().String(),
			CreatedAt: now,
		},
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestCount: req.GuestCount,
		RoomTypes:  selections,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Nights:     nights,
		TotalPrice: price,
		TotalRooms: totalRooms(selections),
		Status:     entity.BookingStatusConfirmed,
		Version:    1,
	}

	bookingOp, err := s.repo.Booking.PutOp(booking)
	if err != nil {
		return nil, apperror.Storage(err, "Failed to create booking")
	}

	if err := s.commit(ctx, bookingOp, booking.ID, deltas, entity.LedgerOperationCreate, now); err != nil {
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID),
		)
		return nil, s.classifyCommit(booking.ID, err, "Failed to create booking")
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.Int("total_rooms", booking.TotalRooms),
		zap.Float64("total_price", booking.TotalPrice),
	)
	s.publish(ctx, event.TypeBookingCreated, booking, deltas, now)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetAllBookings(ctx context.Context) (*response.BookingListResponse, error) {
	bookings, err := s.repo.Booking.FindAll(ctx)
	if err != nil {
		return nil, apperror.Storage(err, "Failed to fetch bookings")
	}

	out := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, response.BookingToResponse(b))
	}

	return &response.BookingListResponse{Bookings: out, Total: len(out)}, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*response.BookingMutationResponse, error) {
	existing, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update booking validation failed", zap.Any("errors", errs), zap.String("booking_id", bookingID))
		return nil, apperror.Validation(nil, "Validation failed: %s", utils.FormatValidationErrors(errs))
	}

	updated := *existing
	if req.GuestName != nil {
		updated.GuestName = *req.GuestName
	}
	if req.GuestEmail != nil {
		updated.GuestEmail = *req.GuestEmail
	}
	if req.GuestCount != nil {
		updated.GuestCount = *req.GuestCount
	}
	if req.CheckIn != nil {
		updated.CheckIn = *req.CheckIn
	}
	if req.CheckOut != nil {
		updated.CheckOut = *req.CheckOut
	}

	var deltas []inventory.Delta
	if req.RoomTypes != nil {
		if len(req.RoomTypes) == 0 {
			return nil, apperror.Validation(nil, "At least one room selection is required")
		}
		selections := toSelections(req.RoomTypes)
		if err := s.validateSelections(selections); err != nil {
			return nil, err
		}
		deltas = inventory.Deltas(existing.RoomTypes, selections)
		updated.RoomTypes = selections
		updated.TotalRooms = totalRooms(selections)
	}

	nights, price, err := s.quote(updated.RoomTypes, updated.CheckIn, updated.CheckOut)
	if err != nil {
		return nil, err
	}
	updated.Nights = nights
	updated.TotalPrice = price

	// the scan still counts the old selection, so only net growth is checked
	if err := s.checkAvailability(ctx, deltas); err != nil {
		return nil, err
	}

	now := s.now()
	updated.UpdatedAt = &now
	updated.Version = existing.Version + 1

	// deltas were computed from existing, so the write must not outlive it
	bookingOp, err := s.repo.Booking.ReplaceOp(&updated, existing.Version)
	if err != nil {
		return nil, apperror.Storage(err, "Error updating booking")
	}

	if err := s.commit(ctx, bookingOp, updated.ID, deltas, entity.LedgerOperationUpdate, now); err != nil {
		s.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return nil, s.classifyCommit(bookingID, err, "Error updating booking")
	}

	s.log.Info("Booking updated",
		zap.String("booking_id", bookingID),
		zap.Any("deltas", deltas),
	)
	s.publish(ctx, event.TypeBookingUpdated, &updated, deltas, now)

	return &response.BookingMutationResponse{
		Booking: response.BookingToResponse(&updated),
		Deltas:  nonNil(deltas),
	}, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, bookingID string) (*response.BookingMutationResponse, error) {
	existing, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	deltas := inventory.Negate(inventory.Deltas(nil, existing.RoomTypes))
	now := s.now()

	bookingOp := s.repo.Booking.DeleteOp(bookingID, existing.Version)
	if err := s.commit(ctx, bookingOp, bookingID, deltas, entity.LedgerOperationDelete, now); err != nil {
		s.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return nil, s.classifyCommit(bookingID, err, "Failed to delete booking")
	}

	s.log.Info("Booking deleted",
		zap.String("booking_id", bookingID),
		zap.Any("deltas", deltas),
	)
	s.publish(ctx, event.TypeBookingDeleted, existing, deltas, now)

	return &response.BookingMutationResponse{
		Booking: response.BookingToResponse(existing),
		Deltas:  deltas,
	}, nil
}

func (s *bookingService) findBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	if bookingID == "" {
		return nil, apperror.Validation(nil, "Booking ID is required")
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, apperror.Storage(err, "Failed to fetch booking")
	}
	if booking == nil {
		return nil, apperror.NotFound(apperror.ErrBookingNotFound, "Booking not found")
	}

	return booking, nil
}

// validateSelections runs the structural and capacity checks per selection,
// stopping at the first failure.
func (s *bookingService) validateSelections(selections []entity.RoomSelection) error {
	for i, sel := range selections {
		if sel.Type == "" || sel.Rooms <= 0 || sel.Guests <= 0 {
			return apperror.Validation(nil, "Invalid room selection at index %d: type, rooms and guests are required and must be positive", i)
		}

		result := s.rules.Capacity.Validate(sel.Type, sel.Guests, sel.Rooms)
		if !result.Valid {
			return apperror.Validation(result.Err, "%s", result.Message)
		}
	}
	return nil
}

func (s *bookingService) quote(selections []entity.RoomSelection, checkIn, checkOut string) (int, float64, error) {
	nights, err := inventory.Nights(checkIn, checkOut)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidDateRange) {
			return 0, 0, apperror.Validation(err, "Check-out date must be after check-in date")
		}
		return 0, 0, apperror.Validation(err, "Invalid date: %v", err)
	}

	price, err := s.rules.Pricing.TotalPrice(selections, checkIn, checkOut)
	if err != nil {
		return 0, 0, apperror.Validation(err, "Unknown room type in selection")
	}

	return nights, price, nil
}

// checkAvailability only looks at growing room types; shrinking ones always fit.
func (s *bookingService) checkAvailability(ctx context.Context, deltas []inventory.Delta) error {
	for _, d := range deltas {
		if d.Rooms <= 0 {
			continue
		}

		result, err := s.rules.Availability.Check(ctx, d.RoomType, d.Rooms)
		if err != nil {
			return apperror.Storage(err, "Failed to check availability")
		}
		if result.Available {
			continue
		}

		s.log.Warn("Room type unavailable",
			zap.String("room_type", d.RoomType),
			zap.Int("requested", d.Rooms),
			zap.Int("currently_booked", result.CurrentlyBooked),
			zap.Int("total_rooms", result.TotalRooms),
		)
		if errors.Is(result.Reason, apperror.ErrRoomTypeNotFound) {
			return apperror.NotFound(result.Reason, "%s", result.Message)
		}
		return apperror.Availability("%s", result.Message)
	}
	return nil
}

// commit writes the booking op, every counter delta and its ledger entries
// in one transaction.
func (s *bookingService) commit(ctx context.Context, bookingOp database.Op, bookingID string, deltas []inventory.Delta, op entity.LedgerOperation, at time.Time) error {
	ops := []database.Op{bookingOp}
	ops = append(ops, s.rules.Counter.Ops(deltas)...)

	for _, d := range deltas {
		if d.Rooms == 0 {
			continue
		}
		entryOp, err := s.repo.Ledger.EntryOp(&entity.LedgerEntry{
			BookingID: bookingID,
			RoomType:  d.RoomType,
			Delta:     d.Rooms,
			Operation: op,
			CreatedAt: at,
		})
		if err != nil {
			return err
		}
		ops = append(ops, entryOp)
	}

	if err := s.repo.Transact(ctx, ops); err != nil {
		return &commitError{deltas: nonZero(deltas), err: err}
	}
	return nil
}

// classifyCommit turns a failed transaction into a client-facing error. Op 0
// is always the booking record, ops 1..n the counters in delta order.
func (s *bookingService) classifyCommit(bookingID string, err error, fallback string) error {
	var cerr *commitError
	if !errors.As(err, &cerr) {
		return apperror.Storage(err, "%s", fallback)
	}

	cond := database.AsConditionError(cerr.err)
	if cond == nil {
		return apperror.Storage(cerr.err, "%s", fallback)
	}

	if cond.Index == 0 {
		if cond.Kind == database.ConditionMissing {
			return apperror.NotFound(apperror.ErrBookingNotFound, "Booking not found")
		}
		return apperror.Conflict(cerr.err, "Booking %s was changed by another request, reload it and retry", bookingID)
	}

	if idx := cond.Index - 1; idx < len(cerr.deltas) {
		d := cerr.deltas[idx]
		if d.Rooms > 0 {
			return apperror.Availability("Not enough %s rooms available: requested %d, rooms were taken by a concurrent booking", d.RoomType, d.Rooms)
		}
		return apperror.Conflict(cerr.err, "Inventory for %s is out of sync with bookings, run reconcile", d.RoomType)
	}

	return apperror.Storage(cerr.err, "%s", fallback)
}

func (s *bookingService) publish(ctx context.Context, typ event.Type, b *entity.Booking, deltas []inventory.Delta, at time.Time) {
	ev := event.BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		GuestEmail: b.GuestEmail,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		TotalPrice: b.TotalPrice,
		Deltas:     nonZero(deltas),
		OccurredAt: at,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("event", string(typ)),
			zap.String("booking_id", b.ID),
		)
	}
}

type commitError struct {
	deltas []inventory.Delta
	err    error
}

func (e *commitError) Error() string {
	return fmt.Sprintf("commit booking transaction: %v", e.err)
}

func (e *commitError) Unwrap() error {
	return e.err
}

func toSelections(in []request.RoomSelectionRequest) []entity.RoomSelection {
	out := make([]entity.RoomSelection, len(in))
	for i, sel := range in {
		out[i] = entity.RoomSelection{
			Type:   entity.NormalizeRoomType(sel.Type),
			Rooms:  sel.Rooms,
			Guests: sel.Guests,
		}
	}
	return out
}

func totalRooms(selections []entity.RoomSelection) int {
	total := 0
	for _, sel := range selections {
		total += sel.Rooms
	}
	return total
}

func nonZero(deltas []inventory.Delta) []inventory.Delta {
	out := make([]inventory.Delta, 0, len(deltas))
	for _, d := range deltas {
		if d.Rooms != 0 {
			out = append(out, d)
		}
	}
	return out
}

func nonNil(deltas []inventory.Delta) []inventory.Delta {
	if deltas == nil {
		return []inventory.Delta{}
	}
	return deltas
}
