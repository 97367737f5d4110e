package services

import (
	"context"

	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/repository"
)

const recentOrdersLimit = 5

type DashboardService struct {
	orders            repository.OrderRepo
	products          repository.ProductRepo
	jobs              repository.FulfillmentJobRepo
	lowStockThreshold int
}

func NewDashboardService(orders repository.OrderRepo, products repository.ProductRepo, jobs repository.FulfillmentJobRepo, lowStockThreshold int) *DashboardService {
	return &DashboardService{orders: orders, products: products, jobs: jobs, lowStockThreshold: lowStockThreshold}
}

func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	products, err := s.products.Find(ctx, models.ProductFilter{})
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}

	stats := &models.DashboardStats{
		TotalOrders:      len(orders),
		OrdersByStatus:   make(map[string]int, len(models.OrderStatuses)),
		TotalProducts:    len(products),
		LowStockVariants: []models.LowStockVariant{},
		RecentOrders:     []models.Order{},
	}
	for _, st := range models.OrderStatuses {
		stats.OrdersByStatus[st] = 0
	}
	for _, o := range orders {
		stats.TotalRevenue += o.Price.Total
		stats.OrdersByStatus[o.Status]++
	}

	for _, p := range products {
		for _, v := range p.Variants {
			if v.Stock <= s.lowStockThreshold {
				stats.LowStockVariants = append(stats.LowStockVariants, models.LowStockVariant{
					ProductID: p.ID.Hex(),
					Name:      p.Name,
					SKU:       v.SKU,
					Size:      v.FilterValue,
					Stock:     v.Stock,
				})
			}
		}
	}

	recent, err := s.orders.FindRecent(ctx, recentOrdersLimit)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	stats.RecentOrders = append(stats.RecentOrders, recent...)

	if s.jobs != nil {
		pending, err := s.jobs.CountByStatus(ctx, models.JobPending)
		if err != nil {
			return nil, apperrors.ErrInternalServer.Wrap(err)
		}
		stats.PendingFulfillment = pending
	}
	return stats, nil
}
