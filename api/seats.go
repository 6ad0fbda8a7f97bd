package api

import (
	"net/http"

	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/seats"
	"github.com/gin-gonic/gin"
)

type SeatHandler struct {
	service seats.SeatUseCase
}

type seatResponse struct {
	ID         int64  `json:"id"`
	SeatNumber string `json:"seat_number"`
	SeatClass  string `json:"seat_class"`
}

func toSeatResponse(s *domain.Seat) seatResponse {
	return seatResponse{ID: s.ID, SeatNumber: s.SeatNumber, SeatClass: string(s.SeatClass)}
}

func toSeatResponses(items []domain.Seat) []seatResponse {
	out := make([]seatResponse, 0, len(items))
	for i := range items {
		out = append(out, toSeatResponse(&items[i]))
	}
	return out
}

func NewSeatHandler(service seats.SeatUseCase) *SeatHandler {
	return &SeatHandler{service: service}
}

func (h *SeatHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/search", h.search)
	router.GET("/class/:class", h.listByClass)
}

func (h *SeatHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *SeatHandler) create(c *gin.Context) {
	var req seats.SeatInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	seat, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toSeatResponse(seat))
}

func (h *SeatHandler) get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	seat, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toSeatResponse(seat))
}

func (h *SeatHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[seatResponse]{
		Items:      toSeatResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *SeatHandler) search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[seatResponse]{
		Items:      toSeatResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *SeatHandler) listByClass(c *gin.Context) {
	result, err := h.service.ListByClass(c.Request.Context(), c.Param("class"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[seatResponse]{
		Items:      toSeatResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *SeatHandler) update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req seats.SeatInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	seat, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toSeatResponse(seat))
}

func (h *SeatHandler) delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "seat deleted")
}
