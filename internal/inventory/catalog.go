// Package inventory holds the rules that keep room counters consistent with
// confirmed bookings: the room catalog, pricing, capacity and availability
// checks, and counter mutation. Every lifecycle operation goes through it.
package inventory

import (
	"fmt"
	"sort"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/data/entity"
)

// RoomSpec describes one room type: guests per room, nightly price and how
// many rooms of the type the hotel has.
type RoomSpec struct {
	Type       string  `mapstructure:"type"`
	Capacity   int     `mapstructure:"capacity"`
	Price      float64 `mapstructure:"price"`
	TotalRooms int     `mapstructure:"total_rooms"`
}

// Catalog is immutable after construction.
type Catalog struct {
	specs map[string]RoomSpec
	types []string
}

func DefaultRoomSpecs() []RoomSpec {
	return []RoomSpec{
		{Type: "enkel", Capacity: 1, Price: 500, TotalRooms: 5},
		{Type: "dubbel", Capacity: 2, Price: 1000, TotalRooms: 5},
		{Type: "svit", Capacity: 3, Price: 1500, TotalRooms: 3},
	}
}

func NewCatalog(specs []RoomSpec) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("room catalog is empty")
	}

	c := &Catalog{specs: make(map[string]RoomSpec, len(specs))}
	for _, spec := range specs {
		key := entity.NormalizeRoomType(spec.Type)
		switch {
		case key == "":
			return nil, fmt.Errorf("room catalog entry without type")
		case spec.Capacity <= 0:
			return nil, fmt.Errorf("room type %s: capacity must be positive", key)
		case spec.Price < 0:
			return nil, fmt.Errorf("room type %s: price must not be negative", key)
		case spec.TotalRooms < 0:
			return nil, fmt.Errorf("room type %s: total rooms must not be negative", key)
		}
		if _, dup := c.specs[key]; dup {
			return nil, fmt.Errorf("room type %s listed twice", key)
		}

		spec.Type = key
		c.specs[key] = spec
		c.types = append(c.types, key)
	}
	sort.Strings(c.types)

	return c, nil
}

// MustDefaultCatalog panics only if the built-in table is broken.
func MustDefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultRoomSpecs())
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup is case-insensitive.
func (c *Catalog) Lookup(roomType string) (RoomSpec, error) {
	spec, ok := c.specs[entity.NormalizeRoomType(roomType)]
	if !ok {
		return RoomSpec{}, fmt.Errorf("%q: %w", roomType, apperror.ErrUnknownRoomType)
	}
	return spec, nil
}

// Types returns the normalized room types in sorted order.
func (c *Catalog) Types() []string {
	out := make([]string, len(c.types))
	copy(out, c.types)
	return out
}
