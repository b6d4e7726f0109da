package inventory

import (
	"fmt"

	"hotel-booking/internal/apperror"
)

// CapacityResult is the outcome of a capacity check. Err is set only when the
// room type is unknown.
type CapacityResult struct {
	Valid   bool
	Message string
	Err     error
}

type CapacityValidator struct {
	catalog *Catalog
}

func NewCapacityValidator(catalog *Catalog) *CapacityValidator {
	return &CapacityValidator{catalog: catalog}
}

// Validate checks guests <= capacity(type) * rooms. Inventory is not consulted.
func (v *CapacityValidator) Validate(roomType string, guests, rooms int) CapacityResult {
	spec, err := v.catalog.Lookup(roomType)
	if err != nil {
		return CapacityResult{
			Message: fmt.Sprintf("Unknown room type: %s", roomType),
			Err:     apperror.ErrUnknownRoomType,
		}
	}

	// rooms needed for the party, compared without multiplying rooms
	if needed := (guests-1)/spec.Capacity + 1; guests > 0 && needed > rooms {
		return CapacityResult{
			Message: fmt.Sprintf("Too many guests for %s: %d guests exceeds capacity of %d for %d room(s)",
				spec.Type, guests, spec.Capacity*rooms, rooms),
		}
	}

	return CapacityResult{Valid: true}
}
