package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Inbound webhooks carry up to a full reply body plus headers.
const maxWebhookBody = 1 << 20

func (s *Server) HandleEmailWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.emailEventSvc.HandleWebhook(c.Request.Context(), body, c.GetHeader("x-webhook-signature"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
