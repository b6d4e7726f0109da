package inventory

import (
	"sort"

	"hotel-booking/internal/data/entity"
)

// Delta is a signed change to one room type's counter.
type Delta struct {
	RoomType string `json:"roomType"`
	Rooms    int    `json:"rooms"`
}

// Deltas compares two selection lists per room type: types only in before
// give -rooms, types only in after give +rooms, shared types give the net
// difference. Zero deltas are kept so callers can see every touched type.
// Result is sorted by room type.
func Deltas(before, after []entity.RoomSelection) []Delta {
	oldRooms := entity.SumRoomsByType(before)
	newRooms := entity.SumRoomsByType(after)

	seen := make(map[string]struct{}, len(oldRooms)+len(newRooms))
	for t := range oldRooms {
		seen[t] = struct{}{}
	}
	for t := range newRooms {
		seen[t] = struct{}{}
	}

	out := make([]Delta, 0, len(seen))
	for t := range seen {
		out = append(out, Delta{RoomType: t, Rooms: newRooms[t] - oldRooms[t]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomType < out[j].RoomType })
	return out
}

// Negate flips every delta, used when a booking is removed.
func Negate(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{RoomType: d.RoomType, Rooms: -d.Rooms}
	}
	return out
}
