package repository

import (
	"time"

	"github.com/Domenick1991/skyline/internal/domain"
)

func seedAirports() []domain.Airport {
	return []domain.Airport{
		{ID: 1, Code: "JFK", Name: "New York"},
		{ID: 2, Code: "LAX", Name: "Los Angeles"},
		{ID: 3, Code: "LHE", Name: "Lahore"},
		{ID: 4, Code: "DXB", Name: "Dubai"},
	}
}

func seedAircraft() []domain.Aircraft {
	return []domain.Aircraft{
		{ID: 1, Model: "Boeing 747", Capacity: 416},
		{ID: 2, Model: "Airbus A320", Capacity: 180},
	}
}

func seedCrews() []domain.Crew {
	return []domain.Crew{
		{ID: 1, Name: "Alpha Team", Captain: "Capt. Rogers"},
		{ID: 2, Name: "Bravo Team", Captain: "Capt. Marvel"},
	}
}

// seedFlights departs relative to now so the demo data is always bookable.
func seedFlights(now time.Time) []domain.Flight {
	day := func(offset int) domain.DateTime {
		return domain.DateTimeOf(now.AddDate(0, 0, offset)).StartOfDay()
	}
	return []domain.Flight{
		{ID: 1, DepartureAirportID: 1, ArrivalAirportID: 2, AircraftID: 1, CrewID: 1, DepartureTime: day(10), ArrivalTime: day(10), AvailableSeats: 416},
		{ID: 2, DepartureAirportID: 2, ArrivalAirportID: 3, AircraftID: 2, CrewID: 2, DepartureTime: day(12), ArrivalTime: day(12), AvailableSeats: 180},
		{ID: 3, DepartureAirportID: 3, ArrivalAirportID: 4, AircraftID: 2, CrewID: 1, DepartureTime: day(5), ArrivalTime: day(5), AvailableSeats: 180},
	}
}
