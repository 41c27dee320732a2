package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) NotifierHealth(c *gin.Context) {
	if s.notifier == nil {
		c.JSON(http.StatusOK, gin.H{"status": "disabled"})
		return
	}

	if err := s.notifier.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
