package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/givebridge/givebridge/internal/analytics/domain"
	campaigndomain "github.com/givebridge/givebridge/internal/campaign/domain"
	donationdomain "github.com/givebridge/givebridge/internal/donation/domain"
	"github.com/givebridge/givebridge/internal/donation/webhook"
	donordomain "github.com/givebridge/givebridge/internal/donor/domain"
	gatewaydomain "github.com/givebridge/givebridge/internal/gateway/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, donationdomain.ErrPaymentDeclined):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "payment_declined",
			Message: "the payment was declined by the gateway",
		}
	case errors.Is(err, donationdomain.ErrPaymentRequiresAction):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "payment_requires_action",
			Message: "the payment requires additional donor action",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    conflictErrorCode(err),
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, gatewaydomain.ErrUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_unavailable",
			Message: "payment gateway unavailable",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, gatewaydomain.ErrInvalidConfig):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger with a stable error
// type and code without rendering a response body.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return http.StatusText(status), code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, gatewaydomain.ErrInvalidAmount),
		errors.Is(err, gatewaydomain.ErrInvalidRequest),
		errors.Is(err, gatewaydomain.ErrInvalidSignature),
		errors.Is(err, gatewaydomain.ErrInvalidPayload),
		errors.Is(err, gatewaydomain.ErrInvalidEvent),
		errors.Is(err, webhook.ErrInvalidProvider):
		return true
	case isCampaignValidationError(err),
		isDonationValidationError(err),
		isDonorValidationError(err),
		isAnalyticsValidationError(err):
		return true
	default:
		return false
	}
}

func isCampaignValidationError(err error) bool {
	switch err {
	case campaigndomain.ErrInvalidID,
		campaigndomain.ErrInvalidName,
		campaigndomain.ErrInvalidGoal,
		campaigndomain.ErrInvalidStatus,
		campaigndomain.ErrInvalidWindow:
		return true
	default:
		return false
	}
}

func isDonationValidationError(err error) bool {
	switch err {
	case donationdomain.ErrInvalidID,
		donationdomain.ErrInvalidIntent,
		donationdomain.ErrInvalidEmail,
		donationdomain.ErrInvalidCurrency:
		return true
	default:
		return false
	}
}

func isDonorValidationError(err error) bool {
	switch err {
	case donordomain.ErrInvalidID,
		donordomain.ErrInvalidEmail:
		return true
	default:
		return false
	}
}

func isAnalyticsValidationError(err error) bool {
	switch err {
	case analyticsdomain.ErrInvalidRange,
		analyticsdomain.ErrInvalidWindow:
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, campaigndomain.ErrDuplicateSlug),
		errors.Is(err, campaigndomain.ErrNotAccepting),
		errors.Is(err, donationdomain.ErrPaymentIncomplete),
		errors.Is(err, donationdomain.ErrNotRefundable),
		errors.Is(err, donationdomain.ErrInvalidTransition):
		return true
	default:
		return false
	}
}

func conflictErrorCode(err error) string {
	switch {
	case errors.Is(err, campaigndomain.ErrDuplicateSlug):
		return "duplicate_campaign_slug"
	case errors.Is(err, campaigndomain.ErrNotAccepting):
		return "campaign_not_accepting_donations"
	case errors.Is(err, donationdomain.ErrPaymentIncomplete):
		return "payment_incomplete"
	case errors.Is(err, donationdomain.ErrNotRefundable):
		return "donation_not_refundable"
	case errors.Is(err, donationdomain.ErrInvalidTransition):
		return "invalid_status_transition"
	default:
		return "conflict"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, campaigndomain.ErrNotFound),
		errors.Is(err, donationdomain.ErrNotFound),
		errors.Is(err, donordomain.ErrNotFound),
		errors.Is(err, gatewaydomain.ErrIntentNotFound),
		errors.Is(err, webhook.ErrProviderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
