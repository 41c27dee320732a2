package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	campaigndomain "github.com/givebridge/givebridge/internal/campaign/domain"
	donationdomain "github.com/givebridge/givebridge/internal/donation/domain"
)

type fakeDonationService struct {
	confirmErr   error
	confirmCalls int
	intentErr    error
	getErr       error
	donation     donationdomain.Donation
}

func (f *fakeDonationService) CreateIntent(ctx context.Context, req donationdomain.CreateIntentRequest) (donationdomain.IntentResponse, error) {
	_ = ctx
	if f.intentErr != nil {
		return donationdomain.IntentResponse{}, f.intentErr
	}
	return donationdomain.IntentResponse{
		IntentID:   "pi_test",
		Amount:     req.Amount,
		Currency:   req.Currency,
		CampaignID: req.CampaignID,
	}, nil
}

func (f *fakeDonationService) Confirm(ctx context.Context, req donationdomain.ConfirmRequest) (donationdomain.Donation, error) {
	f.confirmCalls++
	_ = ctx
	_ = req
	if f.confirmErr != nil {
		return donationdomain.Donation{}, f.confirmErr
	}
	return f.donation, nil
}

func (f *fakeDonationService) GetByID(ctx context.Context, id string) (donationdomain.Donation, error) {
	_ = ctx
	_ = id
	if f.getErr != nil {
		return donationdomain.Donation{}, f.getErr
	}
	return f.donation, nil
}

func (f *fakeDonationService) Recent(ctx context.Context, limit int) ([]donationdomain.Donation, error) {
	_ = ctx
	_ = limit
	return nil, nil
}

func (f *fakeDonationService) Refund(ctx context.Context, id string, req donationdomain.RefundRequest) (donationdomain.Donation, error) {
	_ = ctx
	_ = id
	_ = req
	return f.donation, nil
}

func newDonationRouter(svc donationdomain.Service) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	srv := &Server{donationSvc: svc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/v1/donations/intent", srv.IntentRateLimit(), srv.CreateDonationIntent)
	router.POST("/api/v1/donations/confirm", srv.ConfirmDonation)
	router.GET("/api/v1/donations/:id", srv.GetDonationByID)

	return srv, router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestConfirmDonationDeclinedReturns402(t *testing.T) {
	svc := &fakeDonationService{confirmErr: donationdomain.ErrPaymentDeclined}
	_, router := newDonationRouter(svc)

	resp := postJSON(router, "/api/v1/donations/confirm", `{"intent_id":"pi_1"}`)

	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected status 402, got %d", resp.Code)
	}
	if svc.confirmCalls != 1 {
		t.Fatalf("expected 1 confirm call, got %d", svc.confirmCalls)
	}
}

func TestConfirmDonationMissingIntentReturns400(t *testing.T) {
	svc := &fakeDonationService{}
	_, router := newDonationRouter(svc)

	resp := postJSON(router, "/api/v1/donations/confirm", `{"campaign_id":"1"}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if svc.confirmCalls != 0 {
		t.Fatal("expected confirm service not to be called")
	}
}

func TestConfirmDonationIncompleteReturns409(t *testing.T) {
	svc := &fakeDonationService{confirmErr: donationdomain.ErrPaymentIncomplete}
	_, router := newDonationRouter(svc)

	resp := postJSON(router, "/api/v1/donations/confirm", `{"intent_id":"pi_1"}`)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestCreateIntentPausedCampaignReturns409(t *testing.T) {
	svc := &fakeDonationService{intentErr: campaigndomain.ErrNotAccepting}
	_, router := newDonationRouter(svc)

	resp := postJSON(router, "/api/v1/donations/intent", `{"campaign_id":"1","amount":25,"currency":"USD"}`)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestGetDonationNotFoundReturns404(t *testing.T) {
	svc := &fakeDonationService{getErr: donationdomain.ErrNotFound}
	_, router := newDonationRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donations/123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
