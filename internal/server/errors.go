package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	frauddomain "github.com/smallbiznis/fraudreview/internal/fraudreview/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrInvalidRequest marks a body that could not be read at all.
var ErrInvalidRequest = errors.New("invalid_request")

// errorRule maps a sentinel to its response. code is the low-cardinality
// value written to the access log.
type errorRule struct {
	target  error
	status  int
	errType string
	code    string
	detail  *ValidationError
}

var errorRules = []errorRule{
	{
		target: ErrInvalidRequest, status: http.StatusBadRequest, errType: "validation_error", code: "invalid_request",
		detail: &ValidationError{Field: "request", Code: "invalid_request", Message: "request body could not be read"},
	},
	{
		target: frauddomain.ErrInvalidPayload, status: http.StatusBadRequest, errType: "validation_error", code: "invalid_payload",
		detail: &ValidationError{Field: "payload", Code: "invalid_payload", Message: "invalid notification payload"},
	},
	{target: frauddomain.ErrInvalidMerchant, status: http.StatusUnauthorized, errType: "unauthorized", code: "invalid_merchant"},
	{target: frauddomain.ErrForbiddenAddress, status: http.StatusForbidden, errType: "forbidden", code: "forbidden_address"},
	{target: frauddomain.ErrOrderBusy, status: http.StatusConflict, errType: "conflict", code: "order_busy"},
}

var internalRule = errorRule{status: http.StatusInternalServerError, errType: "internal_error", code: "internal_error"}

func ruleFor(err error) errorRule {
	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			return rule
		}
	}
	return internalRule
}

// ErrorHandlingMiddleware renders the last handler error as JSON when the
// handler has not written a response.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		if last == nil {
			return
		}
		status, payload := mapError(last.Err)
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

func mapError(err error) (int, errorPayload) {
	rule := ruleFor(err)
	payload := errorPayload{Type: rule.errType, Message: http.StatusText(rule.status)}
	if rule.detail != nil {
		payload.Message = "validation error"
		payload.Errors = []ValidationError{*rule.detail}
	}
	return rule.status, payload
}

func classifyErrorForLog(err error) (string, string) {
	rule := ruleFor(err)
	return rule.errType, rule.code
}
