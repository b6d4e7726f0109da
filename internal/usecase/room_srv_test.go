package usecase

import (
	"context"
	"testing"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedInventory_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Booking.CreateBooking(ctx, createRequest("enkel", 1, 1))
	require.NoError(t, err)

	created, err := f.svc.Room.SeedInventory(ctx)

	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 1, f.booked(t, "enkel"), "seeding must not reset counters")
}

func TestListRooms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Booking.CreateBooking(ctx, createRequest("dubbel", 2, 4))
	require.NoError(t, err)

	rooms, err := f.svc.Room.ListRooms(ctx)

	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, response.RoomResponse{
		RoomType:       "dubbel",
		TotalRooms:     5,
		BookedRooms:    2,
		AvailableRooms: 3,
		Capacity:       2,
		PricePerNight:  1000,
	}, rooms[0])
	assert.Equal(t, "enkel", rooms[1].RoomType)
	assert.Equal(t, "svit", rooms[2].RoomType)
}

func TestGetRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.Room.GetRoom(ctx, "SVIT")
	require.NoError(t, err)
	assert.Equal(t, "svit", room.RoomType)
	assert.Equal(t, 3, room.AvailableRooms)

	_, err = f.svc.Room.GetRoom(ctx, "penthouse")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestReconcileRooms_RepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Booking.CreateBooking(ctx, createRequest("enkel", 2, 2))
	require.NoError(t, err)

	_, err = f.store.Increment(ctx, repository.RoomKey("enkel"), repository.FieldBookedRooms, 1)
	require.NoError(t, err)

	results, err := f.svc.Room.ReconcileRooms(ctx)

	require.NoError(t, err)
	assert.Contains(t, results, response.ReconcileResponse{RoomType: "enkel", Before: 3, After: 2, Delta: -1})
	assert.Contains(t, results, response.ReconcileResponse{RoomType: "svit", Before: 0, After: 0, Delta: 0})
	assert.Equal(t, 2, f.booked(t, "enkel"))

	ledger, err := f.svc.Room.ListLedger(ctx, "")
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, entity.LedgerOperationCreate, ledger[0].Operation)
	assert.Equal(t, entity.LedgerOperationReconcile, ledger[1].Operation)
	assert.Equal(t, -1, ledger[1].Delta)
}

func TestReconcileRooms_OverbookedIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Booking.CreateBooking(ctx, createRequest("svit", 3, 3))
	require.NoError(t, err)

	// shrink the hotel under the existing bookings
	item, err := f.store.Get(ctx, repository.RoomKey("svit"))
	require.NoError(t, err)
	item.Attrs[repository.FieldTotalRooms] = 2
	item.Attrs[repository.FieldBookedRooms] = 0
	require.NoError(t, f.store.Put(ctx, *item))

	_, err = f.svc.Room.ReconcileRooms(ctx)

	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestListLedger_FollowsBookingHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Booking.CreateBooking(ctx, createRequest("enkel", 2, 2))
	require.NoError(t, err)
	_, err = f.svc.Booking.CreateBooking(ctx, createRequest("dubbel", 1, 1))
	require.NoError(t, err)

	rooms := []request.RoomSelectionRequest{{Type: "enkel", Rooms: 1, Guests: 1}}
	_, err = f.svc.Booking.UpdateBooking(ctx, created.ID, &request.UpdateBookingRequest{RoomTypes: rooms})
	require.NoError(t, err)
	_, err = f.svc.Booking.DeleteBooking(ctx, created.ID)
	require.NoError(t, err)

	ledger, err := f.svc.Room.ListLedger(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 3)

	sum := 0
	ops := make([]entity.LedgerOperation, 0, len(ledger))
	for _, e := range ledger {
		sum += e.Delta
		ops = append(ops, e.Operation)
	}
	assert.Zero(t, sum, "a deleted booking nets out to zero")
	assert.Equal(t, []entity.LedgerOperation{
		entity.LedgerOperationCreate,
		entity.LedgerOperationUpdate,
		entity.LedgerOperationDelete,
	}, ops)
}
