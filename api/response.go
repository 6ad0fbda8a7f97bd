package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/gin-gonic/gin"
)

// envelope is the uniform response body. Data is set on success, Errors on
// validation failures.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type pageEnvelope struct {
	Items      interface{} `json:"items"`
	TotalCount int64       `json:"total_count"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: true, Message: message})
}

func respondPage[T any](c *gin.Context, result *repository.PageResult[T]) {
	respond(c, http.StatusOK, pageEnvelope{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Page:       result.Number,
		Size:       result.Size,
	})
}

// respondError maps the error taxonomy to HTTP statuses in one place.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, envelope{Success: false, Message: "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	message := appErr.Message
	switch appErr.Code {
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeBadRequest, apperr.CodeValidation:
		status = http.StatusBadRequest
	case apperr.CodeConflict:
		status = http.StatusConflict
	case apperr.CodeUnauthorized:
		status = http.StatusUnauthorized
	case apperr.CodeForbidden:
		status = http.StatusForbidden
	case apperr.CodeInternal:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal server error"
	}
	c.JSON(status, envelope{Success: false, Message: message, Errors: appErr.Fields})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "invalid request body: " + err.Error()})
}

func pageFromQuery(c *gin.Context) repository.Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return repository.Page{Number: number, Size: size}
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid id: %s", c.Param("id"))
	}
	return id, nil
}
