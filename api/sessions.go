package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/service/booking"
	"github.com/Domenick1991/skyline/internal/service/flights"
	"github.com/Domenick1991/skyline/internal/session"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions *session.Manager
	flights  flights.FlightUseCase
	service  booking.BookingUseCase
}

func NewSessionHandler(sessions *session.Manager, flightService flights.FlightUseCase, service booking.BookingUseCase) *SessionHandler {
	return &SessionHandler{sessions: sessions, flights: flightService, service: service}
}

type sessionRequest struct {
	FlightID   *int64  `json:"flight_id"`
	Cabin      *string `json:"cabin"`
	GuestCount *int    `json:"guest_count"`
}

type toggleResponse struct {
	Seat     string           `json:"seat"`
	Selected bool             `json:"selected"`
	Session  session.Snapshot `json:"session"`
}

type checkoutRequest struct {
	Customer *customerRequest     `json:"customer"`
	Price    float64              `json:"price"`
	Status   domain.BookingStatus `json:"status"`
}

type checkoutResponse struct {
	Bookings []booking.Result `json:"bookings"`
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	g := router.Group("/sessions")
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PATCH("/:id", h.update)
	g.POST("/:id/seats/:seat", h.toggleSeat)
	g.POST("/:id/book", h.book)
	g.DELETE("/:id", h.remove)
}

func (h *SessionHandler) create(c *gin.Context) {
	var req sessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	s := h.sessions.Create()
	if !h.apply(c, s, req) {
		h.sessions.Remove(s.ID())
		return
	}
	c.JSON(http.StatusCreated, s.Snapshot())
}

func (h *SessionHandler) get(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) update(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.apply(c, s, req) {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) toggleSeat(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	seat := c.Param("seat")
	selected := s.ToggleSeat(seat)
	c.JSON(http.StatusOK, toggleResponse{Seat: seat, Selected: selected, Session: s.Snapshot()})
}

// book turns a complete selection into one booking per seat. It stops at the
// first seat that cannot be booked; seats booked before it stay booked.
func (h *SessionHandler) book(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, ok := s.Flight()
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"field_errors": gin.H{"flight": "Flight must be selected*"}})
		return
	}
	if !s.IsComplete() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"field_errors": gin.H{
			"seats": fmt.Sprintf("Select %d seat(s)*", s.GuestCount()),
		}})
		return
	}

	customer := req.Customer.toDomain()
	var out checkoutResponse
	for _, seat := range s.SelectedSeats() {
		res, err := h.service.BookFlight(c.Request.Context(), booking.BookingRequest{
			Flight:     &flight,
			Customer:   customer,
			SeatNumber: seat,
			Price:      req.Price,
			Status:     req.Status,
		})
		if err != nil {
			fail(c, err)
			return
		}
		out.Bookings = append(out.Bookings, res)
		if !res.Success() {
			c.JSON(resultStatus(res.FieldErrors, res.GlobalError, http.StatusCreated), out)
			return
		}
	}

	s.Clear()
	h.sessions.Remove(s.ID())
	c.JSON(http.StatusCreated, out)
}

func (h *SessionHandler) remove(c *gin.Context) {
	if !h.sessions.Remove(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": session.ErrSessionNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.SeatSelection, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return s, true
}

// apply sets the flight first, since switching flights clears the selection.
func (h *SessionHandler) apply(c *gin.Context, s *session.SeatSelection, req sessionRequest) bool {
	if req.FlightID != nil {
		flight, err := h.flights.Resolve(*req.FlightID)
		if err != nil {
			fail(c, err)
			return false
		}
		s.SetFlight(flight)
	}
	if req.Cabin != nil {
		s.SetCabin(*req.Cabin)
	}
	if req.GuestCount != nil {
		if err := s.SetGuestCount(*req.GuestCount); err != nil {
			if errors.Is(err, session.ErrInvalidGuestCount) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"field_errors": gin.H{"guest_count": err.Error()}})
				return false
			}
			fail(c, err)
			return false
		}
	}
	return true
}
