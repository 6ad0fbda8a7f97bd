package api

import (
	"net/http"

	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/flightseats"
	"github.com/gin-gonic/gin"
)

type FlightSeatHandler struct {
	service flightseats.FlightSeatUseCase
}

type flightSeatResponse struct {
	ID          int64  `json:"id"`
	FlightID    int64  `json:"flight_id"`
	SeatID      int64  `json:"seat_id"`
	SeatNumber  string `json:"seat_number"`
	SeatClass   string `json:"seat_class"`
	PriceCents  int64  `json:"price_cents"`
	IsAvailable bool   `json:"is_available"`
	IsOccupied  bool   `json:"is_occupied"`
}

type bulkCreateResponse struct {
	Created        []flightSeatResponse `json:"created"`
	SkippedSeatIDs []int64              `json:"skipped_seat_ids"`
}

func toFlightSeatResponse(fs *domain.FlightSeat) flightSeatResponse {
	return flightSeatResponse{
		ID:          fs.ID,
		FlightID:    fs.FlightID,
		SeatID:      fs.SeatID,
		SeatNumber:  fs.SeatNumber,
		SeatClass:   string(fs.SeatClass),
		PriceCents:  fs.PriceCents,
		IsAvailable: fs.IsAvailable,
		IsOccupied:  fs.IsOccupied,
	}
}

func toFlightSeatResponses(items []domain.FlightSeat) []flightSeatResponse {
	out := make([]flightSeatResponse, 0, len(items))
	for i := range items {
		out = append(out, toFlightSeatResponse(&items[i]))
	}
	return out
}

func NewFlightSeatHandler(service flightseats.FlightSeatUseCase) *FlightSeatHandler {
	return &FlightSeatHandler{service: service}
}

func (h *FlightSeatHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id", h.get)
	router.GET("/flight/:id", h.listAvailable)
	router.GET("/search", h.search)
}

func (h *FlightSeatHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.POST("/bulk", h.bulkCreate)
	router.PUT("/:id", h.update)
	router.POST("/:id/release", h.release)
}

func (h *FlightSeatHandler) create(c *gin.Context) {
	var req flightseats.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	fs, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toFlightSeatResponse(fs))
}

func (h *FlightSeatHandler) bulkCreate(c *gin.Context) {
	var req flightseats.BulkCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.service.BulkCreate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, bulkCreateResponse{
		Created:        toFlightSeatResponses(result.Created),
		SkippedSeatIDs: result.SkippedSeatIDs,
	})
}

func (h *FlightSeatHandler) get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	fs, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toFlightSeatResponse(fs))
}

func (h *FlightSeatHandler) listAvailable(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	available, err := h.service.ListAvailable(c.Request.Context(), id, c.Query("class"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toFlightSeatResponses(available))
}

func (h *FlightSeatHandler) search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[flightSeatResponse]{
		Items:      toFlightSeatResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *FlightSeatHandler) update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req flightseats.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	fs, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toFlightSeatResponse(fs))
}

func (h *FlightSeatHandler) release(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.Release(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "seat released")
}
