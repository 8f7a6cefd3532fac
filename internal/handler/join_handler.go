package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"stemgharbiya/siteapi/internal/schema"
	"stemgharbiya/siteapi/internal/service"
	"stemgharbiya/siteapi/pkg/response"
)

type JoinHandler struct {
	joinService service.JoinService
}

func NewJoinHandler(joinService service.JoinService) *JoinHandler {
	return &JoinHandler{joinService: joinService}
}

func (h *JoinHandler) Submit(c *gin.Context) {
	req, ferr := schema.ParseJoin(c.Request.Body)
	if ferr != nil {
		response.ValidationError(c, ferr.Message, ferr.Field)
		return
	}

	warning, err := h.joinService.Submit(c.Request.Context(), req, clientIP(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationFailed):
			response.BadRequest(c, "Verification failed. Please try again.")
		case errors.Is(err, service.ErrVerifierUnavailable):
			response.ServiceUnavailable(c, "Verification service temporarily unavailable")
		case errors.Is(err, service.ErrRateLimited):
			response.TooManyRequests(c, "Too many requests, try again later")
		case errors.Is(err, service.ErrDuplicateApplication):
			response.Conflict(c, "Application already exists")
		default:
			response.InternalError(c, "Service temporarily unavailable")
		}
		return
	}

	if warning {
		response.OKWithWarning(c, "Application submitted successfully",
			"Application received but notifications may be delayed")
		return
	}
	response.OK(c, "Application submitted successfully")
}

// clientIP prefers the CDN-provided header, then the first X-Forwarded-For
// hop, then gin's own resolution.
func clientIP(c *gin.Context) string {
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	return c.ClientIP()
}
