package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travelo/internal/models"
)

type APIResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type Meta struct {
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Total      int64           `json:"total,omitempty"`
	Count      int             `json:"count,omitempty"`
}

func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func SuccessResponseWithMeta(c *gin.Context, message string, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now(),
	})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, APIResponse{
		Status: StatusError,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now(),
	})
}

func UnauthorizedResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized)
}

func ForbiddenResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", ErrForbidden)
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// DomainErrorResponse maps the booking error taxonomy to HTTP statuses.
// Internal detail never leaks: unknown errors return a generic 500 body.
func DomainErrorResponse(c *gin.Context, err error) {
	switch {
	case models.IsNotFound(err):
		ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case models.IsInvalidTransition(err):
		ErrorResponse(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error())
	case models.IsVoucherError(err):
		ErrorResponse(c, http.StatusUnprocessableEntity, "VOUCHER_INVALID", err.Error())
	case models.IsInsufficientPoints(err):
		ErrorResponse(c, http.StatusUnprocessableEntity, "INSUFFICIENT_POINTS", err.Error())
	case models.IsInsufficientFunds(err):
		ErrorResponse(c, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", err.Error())
	case models.IsGeofence(err):
		ErrorResponse(c, http.StatusUnprocessableEntity, "GEOFENCE_MISMATCH", err.Error())
	case models.IsSignature(err):
		ErrorResponse(c, http.StatusBadRequest, "SIGNATURE_MISMATCH", err.Error())
	case models.IsStaleStatus(err):
		ErrorResponse(c, http.StatusConflict, "STALE_STATUS", err.Error())
	case models.IsConflict(err):
		ErrorResponse(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", ErrInternalServer)
	}
}
