package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	automationdomain "github.com/RonanBeelen/InvoiceStudio/internal/automation/domain"
	customerdomain "github.com/RonanBeelen/InvoiceStudio/internal/customer/domain"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	eventdomain "github.com/RonanBeelen/InvoiceStudio/internal/emailevent/domain"
	priceitemdomain "github.com/RonanBeelen/InvoiceStudio/internal/priceitem/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/render"
	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
	settingsdomain "github.com/RonanBeelen/InvoiceStudio/internal/settings/domain"
	templatedomain "github.com/RonanBeelen/InvoiceStudio/internal/template/domain"
)

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code }

var (
	ErrUnauthorized    = &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "missing or invalid credentials"}
	ErrTooManyRequests = &apiError{Status: http.StatusTooManyRequests, Code: "too_many_requests", Message: "rate limit exceeded"}
)

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "request body or query is malformed"}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: code, Field: field, Message: message}
}

// statusByError maps domain sentinel errors to HTTP statuses. Anything
// unmapped surfaces as a 500.
var statusByError = map[error]int{
	documentdomain.ErrNotFound:          http.StatusNotFound,
	customerdomain.ErrNotFound:          http.StatusNotFound,
	priceitemdomain.ErrNotFound:         http.StatusNotFound,
	automationdomain.ErrNotFound:        http.StatusNotFound,
	eventdomain.ErrNotFound:             http.StatusNotFound,
	templatedomain.ErrNotFound:          http.StatusNotFound,
	documentdomain.ErrInvalidTransition: http.StatusConflict,
	documentdomain.ErrInvalidStatus:     http.StatusUnprocessableEntity,
	documentdomain.ErrInvalidID:         http.StatusBadRequest,
	documentdomain.ErrInvalidType:       http.StatusBadRequest,
	documentdomain.ErrNoLineItems:       http.StatusBadRequest,
	documentdomain.ErrNoPDF:             http.StatusConflict,
	customerdomain.ErrInvalidID:         http.StatusBadRequest,
	customerdomain.ErrInvalidName:       http.StatusBadRequest,
	priceitemdomain.ErrInvalidID:        http.StatusBadRequest,
	priceitemdomain.ErrInvalidName:      http.StatusBadRequest,
	priceitemdomain.ErrInvalidCategory:  http.StatusBadRequest,
	automationdomain.ErrInvalidID:       http.StatusBadRequest,
	automationdomain.ErrInvalidName:     http.StatusBadRequest,
	automationdomain.ErrInvalidFrequency:    http.StatusBadRequest,
	automationdomain.ErrInvalidDayOfMonth:   http.StatusBadRequest,
	automationdomain.ErrInvalidIntervalDays: http.StatusBadRequest,
	automationdomain.ErrMissingSource:       http.StatusBadRequest,
	templatedomain.ErrInvalidID:         http.StatusBadRequest,
	templatedomain.ErrInvalidName:       http.StatusBadRequest,
	templatedomain.ErrInvalidJSON:       http.StatusBadRequest,
	settingsdomain.ErrInvalidKind:       http.StatusBadRequest,
	settingsdomain.ErrInvalidPercentage: http.StatusBadRequest,
	senddomain.ErrNoRecipient:           http.StatusBadRequest,
	senddomain.ErrProviderDisabled:      http.StatusConflict,
	senddomain.ErrProviderRejected:      http.StatusBadGateway,
	senddomain.ErrSendLimitReached:      http.StatusTooManyRequests,
	eventdomain.ErrInvalidID:            http.StatusBadRequest,
	eventdomain.ErrBadSignature:         http.StatusUnauthorized,
	eventdomain.ErrMalformedPayload:     http.StatusBadRequest,
	render.ErrServiceUnavailable:        http.StatusBadGateway,
	render.ErrRenderFailed:              http.StatusBadGateway,
}

// AbortWithError writes the error response and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	for sentinel, status := range statusByError {
		if errors.Is(err, sentinel) {
			c.AbortWithStatusJSON(status, gin.H{"error": &apiError{
				Status:  status,
				Code:    sentinel.Error(),
				Message: err.Error(),
			}})
			return
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": &apiError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "an unexpected error occurred",
	}})
}
