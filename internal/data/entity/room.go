package entity

// RoomInventory is the per room type counter record.
type RoomInventory struct {
	RoomType    string `json:"roomType"`
	TotalRooms  int    `json:"totalRooms"`
	BookedRooms int    `json:"bookedRooms"`
	// Revision counts committed counter writes.
	Revision int64 `json:"revision"`
}

func (r *RoomInventory) AvailableRooms() int {
	if available := r.TotalRooms - r.BookedRooms; available > 0 {
		return available
	}
	return 0
}
