package domain

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	// BookingStatusExpired is never assigned automatically; overdue pending
	// reservations stay PENDING until an operator changes them.
	BookingStatusExpired BookingStatus = "EXPIRED"
)

// Holding reports whether a reservation in this status occupies its seat.
func (s BookingStatus) Holding() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

type Reservation struct {
	ID              int64         `json:"id"`
	FlightID        int64         `json:"flight_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	SeatNumber      string        `json:"seat_number"`
	ReservationDate Date          `json:"reservation_date"`
	Price           float64       `json:"price"`
	Status          BookingStatus `json:"status"`
	AdminName       string        `json:"admin_name"`
	ExpiryTime      *DateTime     `json:"expiry_time"`
}

func ReservationID(r Reservation) int64 { return r.ID }

type Ticket struct {
	ID            int64         `json:"id"`
	ReservationID int64         `json:"reservation_id"`
	CustomerName  string        `json:"customer_name"`
	PaymentStatus BookingStatus `json:"payment_status"`
	FlightInfo    string        `json:"flight_info"`
	FlightDate    Date          `json:"flight_date"`
}

func TicketID(t Ticket) int64 { return t.ID }

type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
