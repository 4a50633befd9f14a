package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/service/booking"
	"github.com/Domenick1991/skyline/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// Deleter removes a record and whatever depends on it.
type Deleter interface {
	Delete(ctx context.Context, id int64) (bool, error)
}

// Deleters are the cascading deletes exposed by the catalog routes.
type Deleters struct {
	Flights  Deleter
	Airports Deleter
	Aircraft Deleter
	Crews    Deleter
}

type FlightHandler struct {
	service  flights.FlightUseCase
	bookings booking.BookingUseCase
	deleters Deleters
}

func NewFlightHandler(service flights.FlightUseCase, bookings booking.BookingUseCase, deleters Deleters) *FlightHandler {
	return &FlightHandler{service: service, bookings: bookings, deleters: deleters}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	g := router.Group("/flights")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/dates", h.dates)
	g.GET("/search", h.search)
	g.GET("/:id", h.get)
	g.GET("/:id/taken-seats", h.takenSeats)
	g.DELETE("/:id", h.delete)

	router.GET("/airports", h.listAirports)
	router.DELETE("/airports/:id", h.deleteAirport)
	router.GET("/aircraft", h.listAircraft)
	router.DELETE("/aircraft/:id", h.deleteAircraft)
	router.GET("/crew", h.listCrews)
	router.DELETE("/crew/:id", h.deleteCrew)
	router.GET("/dashboard", h.dashboard)
}

func (h *FlightHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.List())
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	flight, err := h.service.Resolve(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flights.FlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.service.AddFlight(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(resultStatus(res.FieldErrors, res.GlobalError, http.StatusCreated), res)
}

// dates answers GET /flights/dates?from=1&to=2&month=2026-05.
func (h *FlightHandler) dates(c *gin.Context) {
	from, ok := queryID(c, "from")
	if !ok {
		return
	}
	to, ok := queryID(c, "to")
	if !ok {
		return
	}
	month, err := time.Parse("2006-01", c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}
	c.JSON(http.StatusOK, h.service.AvailableDates(from, to, month.Year(), month.Month()))
}

func (h *FlightHandler) search(c *gin.Context) {
	from, ok := queryID(c, "from")
	if !ok {
		return
	}
	to, ok := queryID(c, "to")
	if !ok {
		return
	}
	day, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	c.JSON(http.StatusOK, h.service.Search(from, to, day))
}

func (h *FlightHandler) takenSeats(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight_id": id, "seats": h.bookings.TakenSeats(id)})
}

func (h *FlightHandler) delete(c *gin.Context) {
	remove(c, h.deleters.Flights)
}

func (h *FlightHandler) listAirports(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Airports())
}

func (h *FlightHandler) deleteAirport(c *gin.Context) {
	remove(c, h.deleters.Airports)
}

func (h *FlightHandler) listAircraft(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Aircraft())
}

func (h *FlightHandler) deleteAircraft(c *gin.Context) {
	remove(c, h.deleters.Aircraft)
}

func (h *FlightHandler) listCrews(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Crews())
}

func (h *FlightHandler) deleteCrew(c *gin.Context) {
	remove(c, h.deleters.Crews)
}

func (h *FlightHandler) dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Dashboard())
}

func remove(c *gin.Context, d Deleter) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	removed, err := d.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
