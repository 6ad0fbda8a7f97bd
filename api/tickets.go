package api

import (
	"net/http"
	"time"

	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

type ticketResponse struct {
	ID             int64  `json:"id"`
	TicketNumber   string `json:"ticket_number"`
	BookingID      int64  `json:"booking_id"`
	FlightSeatID   int64  `json:"flight_seat_id"`
	PassengerName  string `json:"passenger_name"`
	PassengerEmail string `json:"passenger_email,omitempty"`
	PassengerPhone string `json:"passenger_phone,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
	TicketStatus   string `json:"ticket_status"`
	CheckInTime    string `json:"check_in_time,omitempty"`
	BoardingTime   string `json:"boarding_time,omitempty"`
}

func toTicketResponse(t *domain.Ticket) ticketResponse {
	resp := ticketResponse{
		ID:             t.ID,
		TicketNumber:   t.TicketNumber,
		BookingID:      t.BookingID,
		FlightSeatID:   t.FlightSeatID,
		PassengerName:  t.PassengerName,
		PassengerEmail: t.PassengerEmail,
		PassengerPhone: t.PassengerPhone,
		PassportNumber: t.PassportNumber,
		TicketStatus:   string(t.TicketStatus),
	}
	if t.CheckInTime != nil {
		resp.CheckInTime = t.CheckInTime.Format(time.RFC3339)
	}
	if t.BoardingTime != nil {
		resp.BoardingTime = t.BoardingTime.Format(time.RFC3339)
	}
	return resp
}

func toTicketResponses(items []domain.Ticket) []ticketResponse {
	out := make([]ticketResponse, 0, len(items))
	for i := range items {
		out = append(out, toTicketResponse(&items[i]))
	}
	return out
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.GET("/my", h.listMine)
	router.GET("/:id", h.get)
	router.GET("/number/:number", h.getByNumber)
	router.GET("/booking/:id", h.listByBooking)
	router.POST("/:id/check-in", h.checkIn)
}

func (h *TicketHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.issue)
	router.GET("", h.list)
	router.GET("/search", h.search)
	router.POST("/:id/board", h.board)
	router.DELETE("/:id", h.cancel)
}

func (h *TicketHandler) issue(c *gin.Context) {
	var req tickets.IssueInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ticket, err := h.service.Issue(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toTicketResponse(ticket))
}

func (h *TicketHandler) get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ticket, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) getByNumber(c *gin.Context) {
	ticket, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[ticketResponse]{
		Items:      toTicketResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *TicketHandler) listMine(c *gin.Context) {
	mine, err := h.service.ListForUser(c.Request.Context(), currentUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponses(mine))
}

func (h *TicketHandler) search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[ticketResponse]{
		Items:      toTicketResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *TicketHandler) listByBooking(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.service.ListByBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponses(items))
}

func (h *TicketHandler) checkIn(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ticket, err := h.service.CheckIn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) board(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ticket, err := h.service.Board(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) cancel(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ticket, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toTicketResponse(ticket))
}
