package repository

import (
	"fmt"
	"strings"
	"time"

	"hotel-booking/pkg/database"
)

// Single-table layout, compatible with the DynamoDB deployment.
const (
	BookingPartition = "BOOKING#"
	bookingSKPrefix  = "ID#"
	roomPKPrefix     = "ROOM#"
	roomSK           = "META"
	LedgerPartition  = "LEDGER#"

	FieldTotalRooms  = "totalRooms"
	FieldBookedRooms = "bookedRooms"
	FieldRevision    = "revision"
	FieldVersion     = "version"
)

func BookingKey(id string) database.Key {
	return database.Key{PK: BookingPartition, SK: bookingSKPrefix + id}
}

func RoomKey(roomType string) database.Key {
	return database.Key{PK: roomPKPrefix + strings.ToUpper(strings.TrimSpace(roomType)), SK: roomSK}
}

func ledgerSK(at time.Time, bookingID, roomType string) string {
	return fmt.Sprintf("%020d#%s#%s", at.UnixNano(), bookingID, strings.ToUpper(roomType))
}
