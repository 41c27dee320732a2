package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup removes campaigns seeded by integration runs along with
// their donations. Only registered outside production.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.Environment == "production" {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	ctx := c.Request.Context()
	like := prefix + "%"

	var campaignIDs []int64
	if err := s.db.WithContext(ctx).
		Table("campaigns").
		Select("id").
		Where("slug LIKE ?", like).
		Scan(&campaignIDs).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	if len(campaignIDs) > 0 {
		if err := s.db.WithContext(ctx).Exec(
			`DELETE FROM donations WHERE campaign_id IN ?`, campaignIDs,
		).Error; err != nil {
			AbortWithError(c, err)
			return
		}
		if err := s.db.WithContext(ctx).Exec(
			`DELETE FROM campaigns WHERE id IN ?`, campaignIDs,
		).Error; err != nil {
			AbortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
