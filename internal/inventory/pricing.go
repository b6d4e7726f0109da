package inventory

import (
	"fmt"
	"math"
	"strings"
	"time"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/data/entity"
)

const dateLayout = "2006-01-02"

// ParseDate accepts a plain date or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// Nights is the ceiling of the stay length in days. It fails with
// ErrInvalidDateRange unless check-out is after check-in.
func Nights(checkIn, checkOut string) (int, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return 0, fmt.Errorf("checkIn: %w", err)
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return 0, fmt.Errorf("checkOut: %w", err)
	}

	nights := int(math.Ceil(out.Sub(in).Hours() / 24))
	if nights <= 0 {
		return 0, apperror.ErrInvalidDateRange
	}
	return nights, nil
}

// Calculator prices stays from the catalog.
type Calculator struct {
	catalog *Catalog
}

func NewCalculator(catalog *Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// TotalPrice sums price(type) * rooms * nights over all selections.
func (c *Calculator) TotalPrice(selections []entity.RoomSelection, checkIn, checkOut string) (float64, error) {
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, sel := range selections {
		spec, err := c.catalog.Lookup(sel.Type)
		if err != nil {
			return 0, err
		}
		total += spec.Price * float64(sel.Rooms) * float64(nights)
	}
	return total, nil
}
