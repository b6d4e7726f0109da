package inventory

import (
	"context"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/database"
)

// CounterStore is the storage side of the booked-room counter.
type CounterStore interface {
	// BookedRoomsOp builds a bounded increment: 0 <= booked <= total.
	BookedRoomsOp(roomType string, delta int) database.Op
	// ResetOp is BookedRoomsOp guarded by the revision the counter was read at.
	ResetOp(roomType string, delta int, revision int64) database.Op
	Transact(ctx context.Context, ops []database.Op) error
	BookedRooms(ctx context.Context, roomType string) (int, error)
}

// Counter applies signed deltas to booked-room counters. Every mutation is a
// single conditional increment, never read-modify-write.
type Counter struct {
	store CounterStore
}

func NewCounter(store CounterStore) *Counter {
	return &Counter{store: store}
}

// Ops returns one bounded increment per non-zero delta, for use inside a
// larger transaction.
func (c *Counter) Ops(deltas []Delta) []database.Op {
	ops := make([]database.Op, 0, len(deltas))
	for _, d := range deltas {
		if d.Rooms == 0 {
			continue
		}
		ops = append(ops, c.store.BookedRoomsOp(d.RoomType, d.Rooms))
	}
	return ops
}

// Reset moves the counter of room to target, committed together with extra,
// and returns the new value. room must be a fresh read: the write is refused
// with a stale condition when any counter write landed since.
func (c *Counter) Reset(ctx context.Context, room *entity.RoomInventory, target int, extra ...database.Op) (int, error) {
	ops := append([]database.Op{c.store.ResetOp(room.RoomType, target-room.BookedRooms, room.Revision)}, extra...)
	if err := c.store.Transact(ctx, ops); err != nil {
		return 0, err
	}
	return c.store.BookedRooms(ctx, room.RoomType)
}
