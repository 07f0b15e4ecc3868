package stats

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
)

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	VendorStats(ctx context.Context, vendorID uuid.UUID) (*VendorStats, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d, err := s.repo.Dashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to build dashboard: %w", err)
	}
	return d, nil
}

func (s *service) VendorStats(ctx context.Context, vendorID uuid.UUID) (*VendorStats, error) {
	vs, err := s.repo.VendorStats(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to build vendor stats: %w", err)
	}
	return vs, nil
}
