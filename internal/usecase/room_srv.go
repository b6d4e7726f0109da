package usecase

import (
	"context"
	"errors"
	"time"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/response"
	"hotel-booking/pkg/database"

	"go.uber.org/zap"
)

type RoomService interface {
	ListRooms(ctx context.Context) ([]response.RoomResponse, error)
	GetRoom(ctx context.Context, roomType string) (*response.RoomResponse, error)

	// Maintenance
	SeedInventory(ctx context.Context) (int, error)
	ReconcileRooms(ctx context.Context) ([]response.ReconcileResponse, error)
	ListLedger(ctx context.Context, bookingID string) ([]response.LedgerEntryResponse, error)
}

type roomService struct {
	repo  *repository.Repository
	rules *Rules
	log   *zap.Logger
	now   func() time.Time
}

func NewRoomService(repo *repository.Repository, rules *Rules, log *zap.Logger) RoomService {
	return &roomService{
		repo:  repo,
		rules: rules,
		log:   log.With(zap.String("service", "room")),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *roomService) ListRooms(ctx context.Context) ([]response.RoomResponse, error) {
	rooms, err := s.repo.Room.FindAll(ctx, s.rules.Catalog.Types())
	if err != nil {
		return nil, apperror.Storage(err, "Failed to fetch rooms")
	}

	out := make([]response.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, s.toResponse(room))
	}
	return out, nil
}

func (s *roomService) GetRoom(ctx context.Context, roomType string) (*response.RoomResponse, error) {
	if _, err := s.rules.Catalog.Lookup(roomType); err != nil {
		return nil, apperror.NotFound(err, "Room type %s not found", entity.NormalizeRoomType(roomType))
	}

	room, err := s.repo.Room.FindByType(ctx, roomType)
	if err != nil {
		return nil, apperror.Storage(err, "Failed to fetch room")
	}
	if room == nil {
		return nil, apperror.NotFound(apperror.ErrRoomTypeNotFound, "Room type %s not found", entity.NormalizeRoomType(roomType))
	}

	resp := s.toResponse(room)
	return &resp, nil
}

// SeedInventory creates a record for every catalog type that has none yet.
// Existing counters are left alone.
func (s *roomService) SeedInventory(ctx context.Context) (int, error) {
	created := 0
	for _, roomType := range s.rules.Catalog.Types() {
		spec, err := s.rules.Catalog.Lookup(roomType)
		if err != nil {
			return created, err
		}

		ok, err := s.repo.Room.CreateIfMissing(ctx, &entity.RoomInventory{
			RoomType:   spec.Type,
			TotalRooms: spec.TotalRooms,
		})
		if err != nil {
			return created, apperror.Storage(err, "Failed to seed room inventory")
		}
		if ok {
			created++
			s.log.Info("Room inventory seeded",
				zap.String("room_type", spec.Type),
				zap.Int("total_rooms", spec.TotalRooms),
			)
		}
	}
	return created, nil
}

// reconcileAttempts bounds retries when bookings keep committing while a
// room type is being reconciled.
const reconcileAttempts = 5

// ReconcileRooms resets every counter to the total found by scanning
// confirmed bookings, logging each correction in the ledger.
func (s *roomService) ReconcileRooms(ctx context.Context) ([]response.ReconcileResponse, error) {
	types := s.rules.Catalog.Types()
	out := make([]response.ReconcileResponse, 0, len(types))
	for _, roomType := range types {
		result, ok, err := s.reconcileRoom(ctx, roomType)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, result)
		}
	}
	return out, nil
}

// reconcileRoom reads the counter, scans bookings, then writes the scanned
// total only if no counter write landed in between. ok is false when the
// room type has no record.
func (s *roomService) reconcileRoom(ctx context.Context, roomType string) (response.ReconcileResponse, bool, error) {
	for attempt := 1; attempt <= reconcileAttempts; attempt++ {
		room, err := s.repo.Room.FindByType(ctx, roomType)
		if err != nil {
			return response.ReconcileResponse{}, false, apperror.Storage(err, "Failed to fetch rooms")
		}
		if room == nil {
			return response.ReconcileResponse{}, false, nil
		}

		scanned, err := s.rules.Availability.CurrentlyBooked(ctx, room.RoomType)
		if err != nil {
			return response.ReconcileResponse{}, false, apperror.Storage(err, "Failed to scan bookings")
		}

		diff := scanned - room.BookedRooms
		var extra []database.Op
		if diff != 0 {
			entryOp, err := s.repo.Ledger.EntryOp(&entity.LedgerEntry{
				RoomType:  room.RoomType,
				Delta:     diff,
				Operation: entity.LedgerOperationReconcile,
				CreatedAt: s.now(),
			})
			if err != nil {
				return response.ReconcileResponse{}, false, apperror.Storage(err, "Failed to reconcile rooms")
			}
			extra = append(extra, entryOp)
		}

		// a zero diff still commits, proving the scan matched a quiet counter
		after, err := s.rules.Counter.Reset(ctx, room, scanned, extra...)
		if err != nil {
			cond := database.AsConditionError(err)
			switch {
			case cond != nil && cond.Kind == database.ConditionStale:
				s.log.Debug("Room counter moved during reconcile, retrying",
					zap.String("room_type", room.RoomType),
					zap.Int("attempt", attempt),
				)
				continue
			case errors.Is(err, database.ErrConditionFailed):
				return response.ReconcileResponse{}, false, apperror.Conflict(err, "Confirmed bookings for %s exceed total rooms (%d booked, %d total)",
					room.RoomType, scanned, room.TotalRooms)
			default:
				return response.ReconcileResponse{}, false, apperror.Storage(err, "Failed to reconcile rooms")
			}
		}

		if diff != 0 {
			s.log.Warn("Room counter drift corrected",
				zap.String("room_type", room.RoomType),
				zap.Int("before", room.BookedRooms),
				zap.Int("after", after),
			)
		}
		return response.ReconcileResponse{
			RoomType: room.RoomType,
			Before:   room.BookedRooms,
			After:    after,
			Delta:    diff,
		}, true, nil
	}

	return response.ReconcileResponse{}, false, apperror.Conflict(nil, "Bookings for %s kept changing during reconcile, retry", roomType)
}

func (s *roomService) ListLedger(ctx context.Context, bookingID string) ([]response.LedgerEntryResponse, error) {
	entries, err := s.repo.Ledger.FindAll(ctx, bookingID)
	if err != nil {
		return nil, apperror.Storage(err, "Failed to fetch ledger")
	}

	out := make([]response.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, response.LedgerEntryToResponse(e))
	}
	return out, nil
}

func (s *roomService) toResponse(room *entity.RoomInventory) response.RoomResponse {
	resp := response.RoomResponse{
		RoomType:       room.RoomType,
		TotalRooms:     room.TotalRooms,
		BookedRooms:    room.BookedRooms,
		AvailableRooms: room.AvailableRooms(),
	}
	if spec, err := s.rules.Catalog.Lookup(room.RoomType); err == nil {
		resp.Capacity = spec.Capacity
		resp.PricePerNight = spec.Price
	}
	return resp
}
