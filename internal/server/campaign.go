package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	campaigndomain "github.com/givebridge/givebridge/internal/campaign/domain"
)

type createCampaignRequest struct {
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Currency    string            `json:"currency"`
	GoalAmount  float64           `json:"goal_amount"`
	Metadata    map[string]string `json:"metadata"`
	StartsAt    *time.Time        `json:"starts_at"`
	EndsAt      *time.Time        `json:"ends_at"`
}

func (s *Server) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.campaignSvc.Create(c.Request.Context(), campaigndomain.CreateCampaignRequest{
		Name:        strings.TrimSpace(req.Name),
		Slug:        strings.TrimSpace(req.Slug),
		Description: strings.TrimSpace(req.Description),
		Currency:    strings.TrimSpace(req.Currency),
		GoalAmount:  req.GoalAmount,
		Metadata:    req.Metadata,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCampaigns(c *gin.Context) {
	var query campaigndomain.ListCampaignRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.campaignSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCampaignByID(c *gin.Context) {
	resp, err := s.campaignSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCampaignBySlug(c *gin.Context) {
	resp, err := s.campaignSvc.GetBySlug(c.Request.Context(), strings.TrimSpace(c.Param("slug")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateCampaignStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateCampaignStatus(c *gin.Context) {
	var req updateCampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.campaignSvc.UpdateStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
