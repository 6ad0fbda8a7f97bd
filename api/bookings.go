package api

import (
	"net/http"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/booking"
	"github.com/flyair/flyair-backend/internal/service/users"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	users   users.UserUseCase
}

type bookingResponse struct {
	ID               int64            `json:"id"`
	BookingReference string           `json:"booking_reference"`
	UserID           int64            `json:"user_id"`
	FlightID         int64            `json:"flight_id"`
	TotalAmountCents int64            `json:"total_amount_cents"`
	BookingStatus    string           `json:"booking_status"`
	PaymentStatus    string           `json:"payment_status"`
	BookingDate      string           `json:"booking_date"`
	Tickets          []ticketResponse `json:"tickets,omitempty"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:               b.ID,
		BookingReference: b.BookingReference,
		UserID:           b.UserID,
		FlightID:         b.FlightID,
		TotalAmountCents: b.TotalAmountCents,
		BookingStatus:    string(b.BookingStatus),
		PaymentStatus:    string(b.PaymentStatus),
		BookingDate:      b.BookingDate.Format(time.RFC3339),
	}
}

func toBookingResponses(items []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(items))
	for i := range items {
		out = append(out, toBookingResponse(&items[i]))
	}
	return out
}

func NewBookingHandler(service booking.BookingUseCase, users users.UserUseCase) *BookingHandler {
	return &BookingHandler{service: service, users: users}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/my", h.listMine)
	router.GET("/:id", h.get)
	router.GET("/reference/:reference", h.getByReference)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/search", h.search)
	router.GET("/stats", h.stats)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	details, err := h.service.CreateBooking(c.Request.Context(), currentUsername(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := toBookingResponse(&details.Booking)
	resp.Tickets = toTicketResponses(details.Tickets)
	respond(c, http.StatusCreated, resp)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.authorize(c, b); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) getByReference(c *gin.Context) {
	b, err := h.service.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.authorize(c, b); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondBookingPage(c, result)
}

func (h *BookingHandler) listMine(c *gin.Context) {
	result, err := h.service.ListForUser(c.Request.Context(), currentUsername(c), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondBookingPage(c, result)
}

func (h *BookingHandler) search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondBookingPage(c, result)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.authorize(c, b); err != nil {
		respondError(c, err)
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toBookingResponse(cancelled))
}

func (h *BookingHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

// authorize lets admins reach any booking and users only their own.
func (h *BookingHandler) authorize(c *gin.Context, b *domain.Booking) error {
	if isAdmin(c) {
		return nil
	}
	user, err := h.users.GetByUsername(c.Request.Context(), currentUsername(c))
	if err != nil {
		return err
	}
	if b.UserID != user.ID {
		return apperr.Forbidden("access denied")
	}
	return nil
}

func (h *BookingHandler) respondBookingPage(c *gin.Context, result *repository.PageResult[domain.Booking]) {
	respondPage(c, &repository.PageResult[bookingResponse]{
		Items:      toBookingResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}
