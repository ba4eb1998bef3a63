package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListActivityFeed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := s.activitySvc.Feed(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
