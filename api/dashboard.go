package api

import (
	"net/http"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/service/dashboard"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service dashboard.DashboardUseCase
}

func NewDashboardHandler(service dashboard.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// globalSearchResponse re-maps every section through the entity DTOs so the
// users section never carries credential columns.
type globalSearchResponse struct {
	Airports []airportResponse `json:"airports"`
	Flights  []flightResponse  `json:"flights"`
	Bookings []bookingResponse `json:"bookings"`
	Users    []userResponse    `json:"users"`
	Tickets  []ticketResponse  `json:"tickets"`
}

func toGlobalSearchResponse(r *dashboard.SearchResult) globalSearchResponse {
	return globalSearchResponse{
		Airports: toAirportResponses(r.Airports),
		Flights:  toFlightResponses(r.Flights),
		Bookings: toBookingResponses(r.Bookings),
		Users:    toUserResponses(r.Users),
		Tickets:  toTicketResponses(r.Tickets),
	}
}

func (h *DashboardHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/stats", h.stats)
	router.GET("/search", h.globalSearch)
}

func (h *DashboardHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

func (h *DashboardHandler) globalSearch(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		respondError(c, apperr.BadRequest("query parameter q is required"))
		return
	}

	result, err := h.service.GlobalSearch(c.Request.Context(), term, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toGlobalSearchResponse(result))
}
