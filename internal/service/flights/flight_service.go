package flights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/logger"
	"github.com/Domenick1991/skyline/internal/tracing"
	"go.uber.org/zap"
)

const (
	MsgSameAirport      = "Departure and Arrival airports cannot be the same."
	MsgArrivalBeforeDep = "Arrival date cannot be before departure date."
)

type FlightUseCase interface {
	List() []domain.Flight
	GetByID(id int64) (domain.Flight, error)
	Resolve(id int64) (domain.FlightSearchResult, error)
	Airports() []domain.Airport
	Aircraft() []domain.Aircraft
	Crews() []domain.Crew
	AvailableDates(fromID, toID int64, year int, month time.Month) []domain.Date
	Search(fromID, toID int64, day domain.Date) []domain.FlightSearchResult
	AddFlight(ctx context.Context, input FlightInput) (Result, error)
	Dashboard() DashboardStats
}

type FlightStore interface {
	List() []domain.Flight
	GetByID(id int64) (domain.Flight, error)
	Add(f domain.Flight) (domain.Flight, error)
	FindByRouteAndMonth(fromID, toID int64, year int, month time.Month) []domain.Flight
	FindByRouteAndDate(fromID, toID int64, day domain.Date) []domain.Flight
	Count() int
}

type AirportStore interface {
	List() []domain.Airport
	GetByID(id int64) (domain.Airport, error)
	Count() int
}

type AircraftStore interface {
	List() []domain.Aircraft
	GetByID(id int64) (domain.Aircraft, error)
	Count() int
}

type CrewStore interface {
	List() []domain.Crew
	GetByID(id int64) (domain.Crew, error)
	Count() int
}

// Counter is anything that can report how many records it holds.
type Counter interface {
	Count() int
}

type FlightInput struct {
	DepartureAirportID int64           `json:"departure_airport_id"`
	ArrivalAirportID   int64           `json:"arrival_airport_id"`
	AircraftID         int64           `json:"aircraft_id"`
	CrewID             int64           `json:"crew_id"`
	DepartureTime      domain.DateTime `json:"departure_time"`
	ArrivalTime        domain.DateTime `json:"arrival_time"`
}

type Result struct {
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	GlobalError string            `json:"global_error,omitempty"`
	Flight      *domain.Flight    `json:"flight,omitempty"`
}

func (r Result) Success() bool {
	return len(r.FieldErrors) == 0 && r.GlobalError == ""
}

func (r *Result) addError(field, message string) {
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string]string)
	}
	r.FieldErrors[field] = message
}

type DashboardStats struct {
	Airports     int `json:"airports"`
	Aircraft     int `json:"aircraft"`
	Crews        int `json:"crews"`
	Flights      int `json:"flights"`
	Reservations int `json:"reservations"`
	Tickets      int `json:"tickets"`
}

type FlightService struct {
	flights      FlightStore
	airports     AirportStore
	aircraft     AircraftStore
	crews        CrewStore
	reservations Counter
	tickets      Counter
	log          *zap.Logger
}

func NewFlightService(flights FlightStore, airports AirportStore, aircraft AircraftStore, crews CrewStore,
	reservations, tickets Counter, log *zap.Logger) *FlightService {
	log = logger.OrNop(log)
	return &FlightService{
		flights:      flights,
		airports:     airports,
		aircraft:     aircraft,
		crews:        crews,
		reservations: reservations,
		tickets:      tickets,
		log:          log,
	}
}

func (s *FlightService) List() []domain.Flight {
	return s.flights.List()
}

func (s *FlightService) GetByID(id int64) (domain.Flight, error) {
	return s.flights.GetByID(id)
}

// Resolve joins the current state of a flight with its airports.
func (s *FlightService) Resolve(id int64) (domain.FlightSearchResult, error) {
	f, err := s.flights.GetByID(id)
	if err != nil {
		return domain.FlightSearchResult{}, err
	}
	dep, err := s.airports.GetByID(f.DepartureAirportID)
	if err != nil {
		return domain.FlightSearchResult{}, fmt.Errorf("departure airport %d: %w", f.DepartureAirportID, err)
	}
	arr, err := s.airports.GetByID(f.ArrivalAirportID)
	if err != nil {
		return domain.FlightSearchResult{}, fmt.Errorf("arrival airport %d: %w", f.ArrivalAirportID, err)
	}
	return domain.FlightSearchResult{Flight: f, DepartureAirport: dep, ArrivalAirport: arr}, nil
}

func (s *FlightService) Airports() []domain.Airport {
	return s.airports.List()
}

func (s *FlightService) Aircraft() []domain.Aircraft {
	return s.aircraft.List()
}

func (s *FlightService) Crews() []domain.Crew {
	return s.crews.List()
}

// AvailableDates returns the distinct departure days with sellable flights on
// the route in the given month, earliest first.
func (s *FlightService) AvailableDates(fromID, toID int64, year int, month time.Month) []domain.Date {
	seen := make(map[domain.Date]struct{})
	out := []domain.Date{}
	for _, f := range s.flights.FindByRouteAndMonth(fromID, toID, year, month) {
		d := f.DepartureTime.Date()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j].Time) })
	return out
}

// Search joins the sellable flights of a day with their airports. Flights
// whose airports are gone are skipped.
func (s *FlightService) Search(fromID, toID int64, day domain.Date) []domain.FlightSearchResult {
	found := s.flights.FindByRouteAndDate(fromID, toID, day)
	sort.Slice(found, func(i, j int) bool { return found[i].DepartureTime.Before(found[j].DepartureTime.Time) })

	out := make([]domain.FlightSearchResult, 0, len(found))
	for _, f := range found {
		dep, err := s.airports.GetByID(f.DepartureAirportID)
		if err != nil {
			s.log.Warn("flight references unknown airport", zap.Int64("flight_id", f.ID), zap.Int64("airport_id", f.DepartureAirportID))
			continue
		}
		arr, err := s.airports.GetByID(f.ArrivalAirportID)
		if err != nil {
			s.log.Warn("flight references unknown airport", zap.Int64("flight_id", f.ID), zap.Int64("airport_id", f.ArrivalAirportID))
			continue
		}
		out = append(out, domain.FlightSearchResult{Flight: f, DepartureAirport: dep, ArrivalAirport: arr})
	}
	return out
}

func (s *FlightService) AddFlight(ctx context.Context, input FlightInput) (Result, error) {
	_, span := tracing.StartSpan(ctx, "flights.AddFlight")
	defer span.End()

	var res Result
	if !s.airportExists(input.DepartureAirportID) {
		res.addError("departure_airport", "Departure airport must be selected*")
	}
	if !s.airportExists(input.ArrivalAirportID) {
		res.addError("arrival_airport", "Arrival airport must be selected*")
	}
	// the aircraft decides how many seats the flight sells
	aircraft, err := s.aircraft.GetByID(input.AircraftID)
	if err != nil {
		res.addError("aircraft", "Aircraft must be selected*")
	}
	if _, err := s.crews.GetByID(input.CrewID); err != nil {
		res.addError("crew", "Crew must be selected*")
	}
	if input.DepartureTime.IsZero() {
		res.addError("departure_time", "Departure date is required*")
	}
	if input.ArrivalTime.IsZero() {
		res.addError("arrival_time", "Arrival date is required*")
	}

	if input.DepartureAirportID != 0 && input.DepartureAirportID == input.ArrivalAirportID {
		res.GlobalError = MsgSameAirport
	}
	if !input.DepartureTime.IsZero() && !input.ArrivalTime.IsZero() && input.ArrivalTime.Before(input.DepartureTime.Time) {
		res.GlobalError = MsgArrivalBeforeDep
	}
	if !res.Success() {
		return res, nil
	}

	flight, err := s.flights.Add(domain.Flight{
		DepartureAirportID: input.DepartureAirportID,
		ArrivalAirportID:   input.ArrivalAirportID,
		AircraftID:         input.AircraftID,
		CrewID:             input.CrewID,
		DepartureTime:      input.DepartureTime,
		ArrivalTime:        input.ArrivalTime,
		AvailableSeats:     aircraft.Capacity,
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info("flight added", zap.Int64("flight_id", flight.ID), zap.Int("seats", flight.AvailableSeats))
	return Result{Flight: &flight}, nil
}

func (s *FlightService) Dashboard() DashboardStats {
	return DashboardStats{
		Airports:     s.airports.Count(),
		Aircraft:     s.aircraft.Count(),
		Crews:        s.crews.Count(),
		Flights:      s.flights.Count(),
		Reservations: s.reservations.Count(),
		Tickets:      s.tickets.Count(),
	}
}

func (s *FlightService) airportExists(id int64) bool {
	if id <= 0 {
		return false
	}
	_, err := s.airports.GetByID(id)
	return err == nil
}

var _ FlightUseCase = (*FlightService)(nil)
