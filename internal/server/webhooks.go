package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) HandleGatewayWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.webhookSvc.Ingest(c.Request.Context(), provider, payload, c.Request.Header); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
