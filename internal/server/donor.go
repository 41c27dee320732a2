package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	donordomain "github.com/givebridge/givebridge/internal/donor/domain"
)

func (s *Server) ListDonors(c *gin.Context) {
	var query struct {
		Segment   string `form:"segment"`
		Recurring string `form:"recurring"`
		PageToken string `form:"page_token"`
		PageSize  int32  `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	recurring, err := parseOptionalBool(query.Recurring)
	if err != nil {
		AbortWithError(c, newValidationError("recurring", "invalid_recurring", "invalid recurring"))
		return
	}

	resp, err := s.donorSvc.List(c.Request.Context(), donordomain.ListDonorRequest{
		Segment:   strings.TrimSpace(query.Segment),
		Recurring: recurring,
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDonorByID(c *gin.Context) {
	resp, err := s.donorSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) LookupDonor(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		AbortWithError(c, newValidationError("email", "required", "email is required"))
		return
	}

	resp, err := s.donorSvc.GetByEmail(c.Request.Context(), email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
