package repository

import (
	"context"
	"fmt"
	"strings"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/database"

	"go.uber.org/zap"
)

type BookingRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Booking, error)
	FindAll(ctx context.Context) ([]*entity.Booking, error)

	// Business queries
	FindConfirmedByRoomType(ctx context.Context, roomType string) ([]*entity.Booking, error)

	// Transaction building blocks
	PutOp(booking *entity.Booking) (database.Op, error)
	// ReplaceOp and DeleteOp only apply while the stored version still
	// equals expectedVersion.
	ReplaceOp(booking *entity.Booking, expectedVersion int64) (database.Op, error)
	DeleteOp(id string, expectedVersion int64) database.Op
}

type bookingRepository struct {
	store database.Store
	log   *zap.Logger
}

func NewBookingRepository(store database.Store, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		store: store,
		log:   log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	item, err := r.store.Get(ctx, BookingKey(id))
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}
	if item == nil {
		return nil, nil
	}

	return r.decode(*item)
}

func (r *bookingRepository) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	items, err := r.store.Query(ctx, BookingPartition)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	bookings := make([]*entity.Booking, 0, len(items))
	for _, item := range items {
		booking, err := r.decode(item)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) FindConfirmedByRoomType(ctx context.Context, roomType string) ([]*entity.Booking, error) {
	bookings, err := r.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find confirmed bookings by room type %s: %w", roomType, err)
	}

	var out []*entity.Booking
	for _, booking := range bookings {
		if booking.Status == entity.BookingStatusConfirmed && booking.Includes(roomType) {
			out = append(out, booking)
		}
	}

	return out, nil
}

func (r *bookingRepository) PutOp(booking *entity.Booking) (database.Op, error) {
	attrs, err := database.EncodeAttrs(booking)
	if err != nil {
		return database.Op{}, fmt.Errorf("encode booking %s: %w", booking.ID, err)
	}

	key := BookingKey(booking.ID)
	return database.PutOp(database.Item{PK: key.PK, SK: key.SK, Attrs: attrs}), nil
}

func (r *bookingRepository) ReplaceOp(booking *entity.Booking, expectedVersion int64) (database.Op, error) {
	op, err := r.PutOp(booking)
	if err != nil {
		return database.Op{}, err
	}
	return database.ReplaceOp(op.Item).Expecting(FieldVersion, expectedVersion), nil
}

func (r *bookingRepository) DeleteOp(id string, expectedVersion int64) database.Op {
	return database.DeleteOp(BookingKey(id)).Expecting(FieldVersion, expectedVersion)
}

func (r *bookingRepository) decode(item database.Item) (*entity.Booking, error) {
	var booking entity.Booking
	if err := database.DecodeAttrs(item.Attrs, &booking); err != nil {
		r.log.Error("Failed to decode booking row",
			zap.Error(err),
			zap.String("sk", item.SK),
		)
		return nil, fmt.Errorf("decode booking %s: %w", item.SK, err)
	}
	if booking.ID == "" {
		booking.ID = strings.TrimPrefix(item.SK, bookingSKPrefix)
	}
	return &booking, nil
}
