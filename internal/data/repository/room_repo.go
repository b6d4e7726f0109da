package repository

import (
	"context"
	"fmt"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/database"

	"go.uber.org/zap"
)

type RoomRepository interface {
	FindByType(ctx context.Context, roomType string) (*entity.RoomInventory, error)
	FindAll(ctx context.Context, roomTypes []string) ([]*entity.RoomInventory, error)
	// CreateIfMissing writes a fresh record and reports whether it did.
	CreateIfMissing(ctx context.Context, room *entity.RoomInventory) (bool, error)

	// Counter access
	BookedRooms(ctx context.Context, roomType string) (int, error)
	BookedRoomsOp(roomType string, delta int) database.Op
	ResetOp(roomType string, delta int, revision int64) database.Op
	Transact(ctx context.Context, ops []database.Op) error
}

type roomRepository struct {
	store database.Store
	log   *zap.Logger
}

func NewRoomRepository(store database.Store, log *zap.Logger) RoomRepository {
	return &roomRepository{
		store: store,
		log:   log.With(zap.String("repository", "room")),
	}
}

func (r *roomRepository) FindByType(ctx context.Context, roomType string) (*entity.RoomInventory, error) {
	item, err := r.store.Get(ctx, RoomKey(roomType))
	if err != nil {
		r.log.Error("Failed to find room inventory",
			zap.Error(err),
			zap.String("room_type", roomType),
		)
		return nil, fmt.Errorf("find room inventory %s: %w", roomType, err)
	}
	if item == nil {
		return nil, nil
	}

	return &entity.RoomInventory{
		RoomType:    entity.NormalizeRoomType(roomType),
		TotalRooms:  int(database.AttrInt(item.Attrs, FieldTotalRooms)),
		BookedRooms: int(database.AttrInt(item.Attrs, FieldBookedRooms)),
		Revision:    database.AttrInt(item.Attrs, FieldRevision),
	}, nil
}

// FindAll reads the given room types, skipping the ones without a record.
// Room records live in one partition each, so there is nothing to scan.
func (r *roomRepository) FindAll(ctx context.Context, roomTypes []string) ([]*entity.RoomInventory, error) {
	rooms := make([]*entity.RoomInventory, 0, len(roomTypes))
	for _, roomType := range roomTypes {
		room, err := r.FindByType(ctx, roomType)
		if err != nil {
			return nil, err
		}
		if room != nil {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (r *roomRepository) CreateIfMissing(ctx context.Context, room *entity.RoomInventory) (bool, error) {
	existing, err := r.FindByType(ctx, room.RoomType)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	key := RoomKey(room.RoomType)
	item := database.Item{
		PK: key.PK,
		SK: key.SK,
		Attrs: map[string]any{
			"roomType":       entity.NormalizeRoomType(room.RoomType),
			FieldTotalRooms:  room.TotalRooms,
			FieldBookedRooms: room.BookedRooms,
		},
	}
	if err := r.store.Put(ctx, item); err != nil {
		r.log.Error("Failed to create room inventory",
			zap.Error(err),
			zap.String("room_type", room.RoomType),
		)
		return false, fmt.Errorf("create room inventory %s: %w", room.RoomType, err)
	}

	return true, nil
}

func (r *roomRepository) BookedRooms(ctx context.Context, roomType string) (int, error) {
	room, err := r.FindByType(ctx, roomType)
	if err != nil {
		return 0, err
	}
	if room == nil {
		return 0, fmt.Errorf("room inventory %s: %w", roomType, database.ErrNotFound)
	}
	return room.BookedRooms, nil
}

// BookedRoomsOp is bounded to 0 <= booked <= total and bumps the revision.
func (r *roomRepository) BookedRoomsOp(roomType string, delta int) database.Op {
	return database.IncrementOp(RoomKey(roomType), FieldBookedRooms, int64(delta), &database.Bounds{
		Min:      0,
		MaxField: FieldTotalRooms,
	}).Bumping(FieldRevision)
}

// ResetOp is a BookedRoomsOp that fails when the counter was written after
// it was read at revision.
func (r *roomRepository) ResetOp(roomType string, delta int, revision int64) database.Op {
	return r.BookedRoomsOp(roomType, delta).Expecting(FieldRevision, revision)
}

func (r *roomRepository) Transact(ctx context.Context, ops []database.Op) error {
	return r.store.Transact(ctx, ops)
}
