package domain

import (
	"context"

	"github.com/givebridge/givebridge/pkg/db/pagination"
)

type Service interface {
	GetByID(ctx context.Context, id string) (Donor, error)
	GetByEmail(ctx context.Context, email string) (Donor, error)
	List(ctx context.Context, req ListDonorRequest) (ListDonorResponse, error)
}

type ListDonorRequest struct {
	Segment   string `form:"segment"`
	Recurring *bool  `form:"recurring"`
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size"`
}

type ListDonorResponse struct {
	Donors   []Donor             `json:"donors"`
	PageInfo pagination.PageInfo `json:"page_info"`
}
