package repository

import (
	"sunbird/internal/database"
)

type Repositories struct {
	Operators   *OperatorRepository
	Tourists    *TouristRepository
	Activities  *ActivityRepository
	Occurrences *OccurrenceRepository
	Bookings    *BookingRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Operators:   NewOperatorRepository(db),
		Tourists:    NewTouristRepository(db),
		Activities:  NewActivityRepository(db),
		Occurrences: NewOccurrenceRepository(db),
		Bookings:    NewBookingRepository(db),
	}
}
