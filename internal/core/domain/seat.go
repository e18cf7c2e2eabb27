package domain

import "time"

// SeatAvailability is the current state of one seat; it is also the
// payload of seat:availability.
type SeatAvailability struct {
	LibraryID string    `json:"libraryId"`
	SeatID    string    `json:"seatId"`
	Available bool      `json:"available"`
	UpdatedAt time.Time `json:"updatedAt"`
}
