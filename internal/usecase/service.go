package usecase

import (
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/event"
	"hotel-booking/internal/inventory"

	"go.uber.org/zap"
)

type Service struct {
	Booking BookingService
	Room    RoomService
}

func NewService(repo *repository.Repository, catalog *inventory.Catalog, publisher event.Publisher, log *zap.Logger) *Service {
	rules := NewRules(repo, catalog)

	return &Service{
		Booking: NewBookingService(repo, rules, publisher, log),
		Room:    NewRoomService(repo, rules, log),
	}
}

// Rules bundles the consistency checks shared by the services.
type Rules struct {
	Catalog      *inventory.Catalog
	Pricing      *inventory.Calculator
	Capacity     *inventory.CapacityValidator
	Availability *inventory.AvailabilityChecker
	Counter      *inventory.Counter
}

func NewRules(repo *repository.Repository, catalog *inventory.Catalog) *Rules {
	return &Rules{
		Catalog:      catalog,
		Pricing:      inventory.NewCalculator(catalog),
		Capacity:     inventory.NewCapacityValidator(catalog),
		Availability: inventory.NewAvailabilityChecker(repo.Room, repo.Booking),
		Counter:      inventory.NewCounter(repo.Room),
	}
}
