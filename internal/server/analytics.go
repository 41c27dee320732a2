package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	analyticsdomain "github.com/givebridge/givebridge/internal/analytics/domain"
)

func (s *Server) GetAnalyticsSummary(c *gin.Context) {
	var query struct {
		CampaignID string `form:"campaign_id"`
		From       string `form:"from"`
		To         string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}

	// The service extends the end date to the end of its day itself.
	to, err := parseOptionalTime(query.To, false)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.analyticsSvc.Summary(c.Request.Context(), analyticsdomain.SummaryRequest{
		CampaignID: strings.TrimSpace(query.CampaignID),
		From:       from,
		To:         to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
