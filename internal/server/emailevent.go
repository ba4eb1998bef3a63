package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	eventdomain "github.com/RonanBeelen/InvoiceStudio/internal/emailevent/domain"
)

func (s *Server) ListEmailEvents(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	events, err := s.emailEventSvc.List(c.Request.Context(), unreadOnly, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

func (s *Server) EmailEventUnreadCount(c *gin.Context) {
	count, err := s.emailEventSvc.UnreadCount(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"unread": count}})
}

func (s *Server) DismissEmailEvent(c *gin.Context) {
	id, err := eventdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.emailEventSvc.Dismiss(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"dismissed": true}})
}

func (s *Server) DismissAllEmailEvents(c *gin.Context) {
	if err := s.emailEventSvc.DismissAll(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"dismissed": true}})
}
