package product

import (
	"context"

	"bladeshop-be/internal/logger"

	"go.uber.org/zap"
)

// Service exposes the catalog to the shop flow.
type Service interface {
	Catalog(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Catalog(ctx context.Context) ([]*Product, error) {
	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load catalog",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return nil, err
	}
	if products == nil {
		products = []*Product{}
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, productID string) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductNotFound
	}
	return p, nil
}
