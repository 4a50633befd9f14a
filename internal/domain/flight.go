package domain

type Flight struct {
	ID                 int64    `json:"id"`
	DepartureAirportID int64    `json:"departure_airport_id"`
	ArrivalAirportID   int64    `json:"arrival_airport_id"`
	AircraftID         int64    `json:"aircraft_id"`
	CrewID             int64    `json:"crew_id"`
	DepartureTime      DateTime `json:"departure_time"`
	ArrivalTime        DateTime `json:"arrival_time"`
	AvailableSeats     int      `json:"available_seats"`
}

func FlightID(f Flight) int64 { return f.ID }

type Airport struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

func AirportID(a Airport) int64 { return a.ID }

// FlightSearchResult is the flight snapshot a customer picked, joined with its
// airports.
type FlightSearchResult struct {
	Flight           Flight  `json:"flight"`
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
}

// Summary renders the route as "A → B".
func (r FlightSearchResult) Summary() string {
	return r.DepartureAirport.Name + " → " + r.ArrivalAirport.Name
}
