package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	donationdomain "github.com/givebridge/givebridge/internal/donation/domain"
)

type createIntentRequest struct {
	CampaignID string  `json:"campaign_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	DonorEmail string  `json:"donor_email"`
	DonorName  string  `json:"donor_name"`
	Anonymous  bool    `json:"anonymous"`
	Message    string  `json:"message"`
}

func (s *Server) CreateDonationIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.donationSvc.CreateIntent(c.Request.Context(), donationdomain.CreateIntentRequest{
		CampaignID: strings.TrimSpace(req.CampaignID),
		Amount:     req.Amount,
		Currency:   strings.TrimSpace(req.Currency),
		DonorEmail: strings.TrimSpace(req.DonorEmail),
		DonorName:  strings.TrimSpace(req.DonorName),
		Anonymous:  req.Anonymous,
		Message:    strings.TrimSpace(req.Message),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type confirmDonationRequest struct {
	IntentID   string `json:"intent_id"`
	CampaignID string `json:"campaign_id"`
	DonorEmail string `json:"donor_email"`
	DonorName  string `json:"donor_name"`
	Anonymous  bool   `json:"anonymous"`
	Message    string `json:"message"`
}

// ConfirmDonation settles a completed payment. The request never
// carries an amount, the service reads it back from the gateway.
func (s *Server) ConfirmDonation(c *gin.Context) {
	var req confirmDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.IntentID) == "" {
		AbortWithError(c, newValidationError("intent_id", "required", "intent_id is required"))
		return
	}

	resp, err := s.donationSvc.Confirm(c.Request.Context(), donationdomain.ConfirmRequest{
		IntentID:   strings.TrimSpace(req.IntentID),
		CampaignID: strings.TrimSpace(req.CampaignID),
		DonorEmail: strings.TrimSpace(req.DonorEmail),
		DonorName:  strings.TrimSpace(req.DonorName),
		Anonymous:  req.Anonymous,
		Message:    strings.TrimSpace(req.Message),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDonationByID(c *gin.Context) {
	resp, err := s.donationSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRecentDonations(c *gin.Context) {
	limit, err := parseOptionalLimit(c.Query("limit"), 20, 100)
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	resp, err := s.donationSvc.Recent(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type refundDonationRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

func (s *Server) RefundDonation(c *gin.Context) {
	var req refundDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.donationSvc.Refund(c.Request.Context(), strings.TrimSpace(c.Param("id")), donationdomain.RefundRequest{
		Amount: req.Amount,
		Reason: strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
