package handlers

import (
	"errors"
	"net/http"

	"backoffice/internal/domain"
	"backoffice/internal/gateway"
	"backoffice/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads for new handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Upstream API
// failures surface as 502 with the upstream's message.
func RespondDomainError(c *gin.Context, err error) {
	var upstream gateway.UpstreamError
	switch code := domain.CodeOf(err); code {
	case domain.CodeValidation:
		var verr domain.ValidationError
		errors.As(err, &verr)
		respondError(c, http.StatusBadRequest, code, err.Error(), gin.H{"field": verr.Field})
	case domain.CodeNotFound:
		respondError(c, http.StatusNotFound, code, err.Error(), nil)
	case domain.CodeConflict:
		respondError(c, http.StatusConflict, code, err.Error(), nil)
	default:
		if errors.As(err, &upstream) {
			respondError(c, http.StatusBadGateway, "upstream_error", upstream.Error(), gin.H{"upstream_status": upstream.Status})
			return
		}
		respondError(c, http.StatusInternalServerError, domain.CodeInternal, "something went wrong", nil)
	}
}

// respondUpstreamError is used where any failure means the upstream call
// itself failed (network errors included).
func respondUpstreamError(c *gin.Context, err error) {
	var upstream gateway.UpstreamError
	if domain.CodeOf(err) != "" || errors.As(err, &upstream) {
		RespondDomainError(c, err)
		return
	}
	respondError(c, http.StatusBadGateway, "upstream_error", err.Error(), nil)
}
