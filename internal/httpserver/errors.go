package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"duka-pos/internal/breaker"
	"duka-pos/internal/domain"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorResponse struct {
	Error   errorBody    `json:"error"`
	Session *sessionView `json:"session,omitempty"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// classify maps a service error onto an HTTP status and a stable code.
// Order matters: a failed submission caused by a stock shortfall is a conflict.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "BUSY"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrSubmissionFailed):
		return http.StatusBadGateway, "SUBMISSION_FAILED"
	case errors.Is(err, domain.ErrLookupFailed):
		return http.StatusBadGateway, "LOOKUP_FAILED"
	case errors.Is(err, breaker.ErrOpen):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict, "OUT_OF_STOCK"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, domain.ErrValidationRejected):
		return http.StatusUnprocessableEntity, "VALIDATION_REJECTED"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (h *api) serviceError(c *gin.Context, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("internal error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message = "an internal error occurred"
	}
	writeError(c, status, code, message)
}

func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = msgForTag(fe)
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: errorBody{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  fields,
		}})
		return
	}
	writeError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "phone":
		return "must contain only digits, spaces, dashes and a leading +"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
