package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/repository"
	"github.com/Domenick1991/skyline/internal/service/booking"
	"github.com/Domenick1991/skyline/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type ReservationAdmin interface {
	GetByID(id int64) (domain.Reservation, error)
	UpdateReservationStatus(id int64, status domain.BookingStatus) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type TicketFinder interface {
	FindByCustomerName(name string) []domain.Ticket
}

type BookingHandler struct {
	service      booking.BookingUseCase
	flights      flights.FlightUseCase
	reservations ReservationAdmin
	tickets      TicketFinder
	gateway      booking.PaymentGateway
}

// NewBookingHandler wires the booking routes. gateway may be nil, in which
// case ticket confirmation trusts the caller's transaction ID.
func NewBookingHandler(
	service booking.BookingUseCase,
	flightService flights.FlightUseCase,
	reservations ReservationAdmin,
	tickets TicketFinder,
	gateway booking.PaymentGateway,
) *BookingHandler {
	return &BookingHandler{
		service:      service,
		flights:      flightService,
		reservations: reservations,
		tickets:      tickets,
		gateway:      gateway,
	}
}

type customerRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r *customerRequest) toDomain() *domain.Customer {
	if r == nil || strings.TrimSpace(r.Name) == "" {
		return nil
	}
	return &domain.Customer{ID: r.ID, Name: strings.TrimSpace(r.Name), Email: r.Email, Phone: r.Phone}
}

type createBookingRequest struct {
	FlightID   int64                `json:"flight_id"`
	Customer   *customerRequest     `json:"customer"`
	SeatNumber string               `json:"seat_number"`
	Price      float64              `json:"price"`
	Status     domain.BookingStatus `json:"status"`
	AgentName  string               `json:"agent_name"`
}

type staffReservationRequest struct {
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	FlightID        int64       `json:"flight_id"`
	SeatNumber      string      `json:"seat_number"`
	ReservationDate domain.Date `json:"reservation_date"`
	Price           string      `json:"price"`
	IsPaid          bool        `json:"is_paid"`
	AdminName       string      `json:"admin_name"`
}

type statusRequest struct {
	Status domain.BookingStatus `json:"status"`
}

type confirmRequest struct {
	Email         string  `json:"email"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", h.create)

	reservations := router.Group("/reservations")
	reservations.POST("", h.addReservation)
	reservations.PATCH("/:id/status", h.updateStatus)
	reservations.DELETE("/:id", h.deleteReservation)

	tickets := router.Group("/tickets")
	tickets.GET("", h.findTickets)
	tickets.POST("/:id/confirm", h.confirm)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var flight *domain.FlightSearchResult
	if req.FlightID != 0 {
		resolved, err := h.flights.Resolve(req.FlightID)
		if err != nil {
			fail(c, err)
			return
		}
		flight = &resolved
	}

	res, err := h.service.BookFlight(c.Request.Context(), booking.BookingRequest{
		Flight:     flight,
		Customer:   req.Customer.toDomain(),
		SeatNumber: req.SeatNumber,
		Price:      req.Price,
		Status:     req.Status,
		AgentName:  req.AgentName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(resultStatus(res.FieldErrors, res.GlobalError, http.StatusCreated), res)
}

func (h *BookingHandler) addReservation(c *gin.Context) {
	var req staffReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := booking.StaffReservationInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		SeatNumber:      req.SeatNumber,
		ReservationDate: req.ReservationDate,
		PriceText:       req.Price,
		IsPaid:          req.IsPaid,
		AdminName:       req.AdminName,
	}
	if req.FlightID != 0 {
		flight, err := h.flights.GetByID(req.FlightID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			fail(c, err)
			return
		}
		if err == nil {
			input.Flight = &flight
		}
	}

	res, err := h.service.AddReservation(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(resultStatus(res.FieldErrors, res.GlobalError, http.StatusCreated), res)
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"field_errors": gin.H{"status": "Unknown status*"}})
		return
	}
	if _, err := h.reservations.GetByID(id); err != nil {
		fail(c, err)
		return
	}
	if err := h.reservations.UpdateReservationStatus(id, req.Status); err != nil {
		fail(c, err)
		return
	}
	updated, err := h.reservations.GetByID(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) deleteReservation(c *gin.Context) {
	remove(c, h.reservations)
}

func (h *BookingHandler) findTickets(c *gin.Context) {
	name := strings.TrimSpace(c.Query("customer"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer is required"})
		return
	}
	c.JSON(http.StatusOK, h.tickets.FindByCustomerName(name))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txID := req.TransactionID
	if h.gateway != nil {
		charged, err := h.gateway.Charge(c.Request.Context(), req.Amount)
		if err != nil {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
			return
		}
		txID = charged
	}

	res, err := h.service.ConfirmPayment(c.Request.Context(), booking.ConfirmPaymentInput{
		TicketID:      id,
		Email:         req.Email,
		TransactionID: txID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(resultStatus(res.FieldErrors, res.GlobalError, http.StatusOK), res)
}
