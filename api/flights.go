package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	ID                 int64  `json:"id"`
	FlightNumber       string `json:"flight_number"`
	DepartureAirportID int64  `json:"departure_airport_id"`
	ArrivalAirportID   int64  `json:"arrival_airport_id"`
	DepartureTime      string `json:"departure_time"`
	ArrivalTime        string `json:"arrival_time"`
	DurationMinutes    int    `json:"duration_minutes"`
	Status             string `json:"status"`
	GateNumber         string `json:"gate_number,omitempty"`
	Terminal           string `json:"terminal,omitempty"`
	AircraftType       string `json:"aircraft_type,omitempty"`
}

type updateFlightStatusRequest struct {
	Status string `json:"status"`
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:                 f.ID,
		FlightNumber:       f.FlightNumber,
		DepartureAirportID: f.DepartureAirportID,
		ArrivalAirportID:   f.ArrivalAirportID,
		DepartureTime:      f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:        f.ArrivalTime.Format(time.RFC3339),
		DurationMinutes:    f.DurationMinutes,
		Status:             string(f.Status),
		GateNumber:         f.GateNumber,
		Terminal:           f.Terminal,
		AircraftType:       f.AircraftType,
	}
}

func toFlightResponses(items []domain.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(items))
	for i := range items {
		out = append(out, toFlightResponse(&items[i]))
	}
	return out
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/number/:number", h.getByNumber)
	router.GET("/search", h.search)
	router.GET("/route", h.findByRoute)
	router.GET("/status/:status", h.listByStatus)
	router.GET("/range", h.listByDateRange)
	router.GET("/airport/:id", h.listByAirport)
	router.GET("/upcoming", h.upcoming)
}

func (h *FlightHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.PATCH("/:id/status", h.updateStatus)
	router.DELETE("/:id", h.delete)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flights.FlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	flight, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toFlightResponse(flight))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) getByNumber(c *gin.Context) {
	flight, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondFlightPage(c, result)
}

func (h *FlightHandler) search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondFlightPage(c, result)
}

func (h *FlightHandler) findByRoute(c *gin.Context) {
	from, err := strconv.ParseInt(c.Query("from"), 10, 64)
	if err != nil {
		respondError(c, apperr.BadRequest("invalid from airport id"))
		return
	}
	to, err := strconv.ParseInt(c.Query("to"), 10, 64)
	if err != nil {
		respondError(c, apperr.BadRequest("invalid to airport id"))
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		respondError(c, apperr.BadRequest("invalid date, expected YYYY-MM-DD"))
		return
	}

	result, err := h.service.FindByRoute(c.Request.Context(), from, to, date, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondFlightPage(c, result)
}

func (h *FlightHandler) listByStatus(c *gin.Context) {
	result, err := h.service.ListByStatus(c.Request.Context(), c.Param("status"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondFlightPage(c, result)
}

func (h *FlightHandler) listByDateRange(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		respondError(c, apperr.BadRequest("invalid start date, expected YYYY-MM-DD"))
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		respondError(c, apperr.BadRequest("invalid end date, expected YYYY-MM-DD"))
		return
	}

	result, err := h.service.ListByDateRange(c.Request.Context(), start, end.Add(24*time.Hour-time.Nanosecond), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondFlightPage(c, result)
}

func (h *FlightHandler) listByAirport(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.ListByAirport(c.Request.Context(), id, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondFlightPage(c, result)
}

func (h *FlightHandler) upcoming(c *gin.Context) {
	upcoming, err := h.service.Upcoming(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toFlightResponses(upcoming))
}

func (h *FlightHandler) update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req flights.FlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	flight, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) updateStatus(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req updateFlightStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	flight, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "flight deleted")
}

func (h *FlightHandler) respondFlightPage(c *gin.Context, result *repository.PageResult[domain.Flight]) {
	respondPage(c, &repository.PageResult[flightResponse]{
		Items:      toFlightResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}
