package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/users"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service users.UserUseCase
}

type userResponse struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	Role             string `json:"role"`
	IsEnabled        bool   `json:"is_enabled"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	CreatedAt        string `json:"created_at"`
}

type setEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		PhoneNumber:      u.PhoneNumber,
		Role:             string(u.Role),
		IsEnabled:        u.IsEnabled,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt.Format(time.RFC3339),
	}
}

func toUserResponses(items []domain.User) []userResponse {
	out := make([]userResponse, 0, len(items))
	for i := range items {
		out = append(out, toUserResponse(&items[i]))
	}
	return out
}

func NewUserHandler(service users.UserUseCase) *UserHandler {
	return &UserHandler{service: service}
}

// Register mounts the self-service profile endpoints.
func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.GET("/me", h.me)
	router.PUT("/me", h.updateProfile)
}

func (h *UserHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("/admins", h.createAdmin)
	router.GET("", h.list)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.PATCH("/:id/enabled", h.setEnabled)
	router.DELETE("/:id", h.delete)
}

func (h *UserHandler) me(c *gin.Context) {
	user, err := h.service.GetByUsername(c.Request.Context(), currentUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	var req users.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), currentUsername(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) createAdmin(c *gin.Context) {
	var req users.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toUserResponse(user))
}

func (h *UserHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[userResponse]{
		Items:      toUserResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *UserHandler) search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, &repository.PageResult[userResponse]{
		Items:      toUserResponses(result.Items),
		TotalCount: result.TotalCount,
		Number:     result.Number,
		Size:       result.Size,
	})
}

func (h *UserHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperr.BadRequest("invalid id: %s", c.Param("id")))
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) setEnabled(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req setEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.SetEnabled(c.Request.Context(), id, req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	if req.Enabled {
		respondMessage(c, http.StatusOK, "user enabled")
		return
	}
	respondMessage(c, http.StatusOK, "user disabled")
}

func (h *UserHandler) delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "user deleted")
}
