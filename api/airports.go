package api

import (
	"net/http"
	"time"

	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/airports"
	"github.com/gin-gonic/gin"
)

type AirportHandler struct {
	service airports.AirportUseCase
}

type airportResponse struct {
	ID          int64   `json:"id"`
	AirportCode string  `json:"airport_code"`
	AirportName string  `json:"airport_name"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
}

func toAirportResponse(a *domain.Airport) airportResponse {
	return airportResponse{
		ID:          a.ID,
		AirportCode: a.AirportCode,
		AirportName: a.AirportName,
		City:        a.City,
		Country:     a.Country,
		CountryCode: a.CountryCode,
		TimeZone:    a.TimeZone,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func toAirportResponses(items []domain.Airport) []airportResponse {
	out := make([]airportResponse, 0, len(items))
	for i := range items {
		out = append(out, toAirportResponse(&items[i]))
	}
	return out
}

func NewAirportHandler(service airports.AirportUseCase) *AirportHandler {
	return &AirportHandler{service: service}
}

// Register mounts public reads; RegisterAdmin mounts writes.
func (h *AirportHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/code/:code", h.getByCode)
	router.GET("/search", h.search)
	router.GET("/country/:country", h.listByCountry)
	router.GET("/countries", h.countries)
}

func (h *AirportHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *AirportHandler) create(c *gin.Context) {
	var req airports.AirportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	airport, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toAirportResponse(airport))
}

func (h *AirportHandler) get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	airport, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toAirportResponse(airport))
}

func (h *AirportHandler) getByCode(c *gin.Context) {
	airport, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toAirportResponse(airport))
}

func (h *AirportHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[airportResponse]{
		Items:      toAirportResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *AirportHandler) search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[airportResponse]{
		Items:      toAirportResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *AirportHandler) listByCountry(c *gin.Context) {
	result, err := h.service.ListByCountry(c.Request.Context(), c.Param("country"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[airportResponse]{
		Items:      toAirportResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *AirportHandler) countries(c *gin.Context) {
	countries, err := h.service.Countries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, countries)
}

func (h *AirportHandler) update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req airports.AirportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	airport, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toAirportResponse(airport))
}

func (h *AirportHandler) delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "airport deleted")
}
