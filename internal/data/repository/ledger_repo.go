package repository

import (
	"context"
	"fmt"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/database"

	"go.uber.org/zap"
)

type LedgerRepository interface {
	// FindAll returns entries oldest first, filtered by booking when bookingID is set.
	FindAll(ctx context.Context, bookingID string) ([]*entity.LedgerEntry, error)
	EntryOp(entry *entity.LedgerEntry) (database.Op, error)
}

type ledgerRepository struct {
	store database.Store
	log   *zap.Logger
}

func NewLedgerRepository(store database.Store, log *zap.Logger) LedgerRepository {
	return &ledgerRepository{
		store: store,
		log:   log.With(zap.String("repository", "ledger")),
	}
}

func (r *ledgerRepository) FindAll(ctx context.Context, bookingID string) ([]*entity.LedgerEntry, error) {
	items, err := r.store.Query(ctx, LedgerPartition)
	if err != nil {
		r.log.Error("Failed to list ledger entries", zap.Error(err))
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	entries := make([]*entity.LedgerEntry, 0, len(items))
	for _, item := range items {
		var entry entity.LedgerEntry
		if err := database.DecodeAttrs(item.Attrs, &entry); err != nil {
			return nil, fmt.Errorf("decode ledger entry %s: %w", item.SK, err)
		}
		if bookingID != "" && entry.BookingID != bookingID {
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

func (r *ledgerRepository) EntryOp(entry *entity.LedgerEntry) (database.Op, error) {
	attrs, err := database.EncodeAttrs(entry)
	if err != nil {
		return database.Op{}, fmt.Errorf("encode ledger entry: %w", err)
	}

	return database.PutOp(database.Item{
		PK:    LedgerPartition,
		SK:    ledgerSK(entry.CreatedAt, entry.BookingID, entry.RoomType),
		Attrs: attrs,
	}), nil
}
