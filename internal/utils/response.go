// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenhydro/subsidy-backend/internal/apperrors"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	// Retryable tells automated callers whether a re-read-and-retry is
	// permitted for this error kind.
	Retryable bool `json:"retryable"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = "Invalid request"
	}
	ErrorResponse(c, http.StatusBadRequest, string(apperrors.KindInvalidInput), message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	ErrorResponse(c, http.StatusUnauthorized, string(apperrors.KindUnauthorized), message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Certifier privilege required"
	}
	ErrorResponse(c, http.StatusForbidden, string(apperrors.KindUnauthorized), message, nil)
}

func NotFoundResponse(c *gin.Context, resource string) {
	ErrorResponse(c, http.StatusNotFound, string(apperrors.KindNotFound), resource+" not found", nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, string(apperrors.KindInternal), message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	ErrorResponse(c, http.StatusBadRequest, string(apperrors.KindInvalidInput), "Invalid input", errors)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// AppErrorResponse maps a taxonomy error onto the HTTP surface.
func AppErrorResponse(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)

	var details interface{}
	if appErr, ok := err.(*apperrors.Error); ok && appErr.Details != nil {
		details = appErr.Details
	}

	status := http.StatusInternalServerError
	switch kind {
	case apperrors.KindInvalidInput:
		status = http.StatusBadRequest
	case apperrors.KindUnauthorized:
		status = http.StatusForbidden
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict, apperrors.KindDuplicateDisbursement:
		status = http.StatusConflict
	case apperrors.KindInsufficientFunds:
		status = http.StatusPaymentRequired
	case apperrors.KindReviewRequired:
		status = http.StatusUnprocessableEntity
	case apperrors.KindTransferTimeout:
		status = http.StatusGatewayTimeout
	}

	c.JSON(status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      string(kind),
			Message:   err.Error(),
			Details:   details,
			Retryable: apperrors.Retryable(err),
		},
	})
}

func GetCertifierIDFromContext(c *gin.Context) (string, bool) {
	if certifierID, exists := c.Get("certifier_id"); exists {
		if idStr, ok := certifierID.(string); ok {
			return idStr, true
		}
	}
	return "", false
}
