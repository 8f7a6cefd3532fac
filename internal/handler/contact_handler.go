package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"stemgharbiya/siteapi/internal/schema"
	"stemgharbiya/siteapi/internal/service"
	"stemgharbiya/siteapi/pkg/response"
)

type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	req, ferr := schema.ParseContact(c.Request.Body)
	if ferr != nil {
		response.ValidationError(c, ferr.Message, ferr.Field)
		return
	}

	warning, err := h.contactService.Submit(c.Request.Context(), req, clientIP(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationFailed):
			response.BadRequest(c, "Verification failed. Please try again.")
		case errors.Is(err, service.ErrVerifierUnavailable):
			response.ServiceUnavailable(c, "Verification service temporarily unavailable")
		case errors.Is(err, service.ErrRateLimited):
			response.TooManyRequests(c, "Too many requests, try again later")
		default:
			response.InternalError(c, "Service temporarily unavailable")
		}
		return
	}

	if warning {
		response.OKWithWarning(c, "Message sent successfully",
			"Message received but notifications may be delayed")
		return
	}
	response.OK(c, "Message sent successfully")
}
