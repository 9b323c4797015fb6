package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
)

const topGarmentLimit = 5

type DashboardService interface {
	GetDashboard(ctx context.Context, startDate, endDate time.Time) (model.DashboardResponse, error)
}

type dashboardService struct {
	dashboardRepo repository.DashboardRepository
}

func NewDashboardService(dashboardRepo repository.DashboardRepository) DashboardService {
	return &dashboardService{dashboardRepo: dashboardRepo}
}

// GetDashboard assembles pipeline and money-flow metrics bounded by the
// given time range. The pipeline and receivables figures are snapshots
// of the present, not range-filtered.
func (s *dashboardService) GetDashboard(ctx context.Context, startDate, endDate time.Time) (model.DashboardResponse, error) {
	var response model.DashboardResponse
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	booked, bookedValue, err := s.dashboardRepo.CountBookedOrders(ctx, startDate, endDate)
	if err != nil {
		return response, err
	}
	response.OrdersBooked = booked
	if response.BookedValue, err = decimal.NewFromString(bookedValue); err != nil {
		return response, fmt.Errorf("%w: malformed booked value %q", ErrValidation, bookedValue)
	}

	if response.OrdersDelivered, err = s.dashboardRepo.CountDeliveredOrders(ctx, startDate, endDate); err != nil {
		return response, err
	}

	collected, err := s.dashboardRepo.SumCollected(ctx, startDate, endDate)
	if err != nil {
		return response, err
	}
	if response.CollectedValue, err = decimal.NewFromString(collected); err != nil {
		return response, fmt.Errorf("%w: malformed collected value %q", ErrValidation, collected)
	}

	receivables, err := s.dashboardRepo.SumPendingReceivables(ctx)
	if err != nil {
		return response, err
	}
	if response.PendingReceivables, err = decimal.NewFromString(receivables); err != nil {
		return response, fmt.Errorf("%w: malformed receivables value %q", ErrValidation, receivables)
	}

	if response.NewCustomers, err = s.dashboardRepo.CountNewCustomers(ctx, startDate, endDate); err != nil {
		return response, err
	}

	if response.PipelineByStatus, err = s.dashboardRepo.PipelineByStatus(ctx); err != nil {
		return response, err
	}

	rows, err := s.dashboardRepo.TopGarments(ctx, startDate, endDate, topGarmentLimit)
	if err != nil {
		return response, err
	}
	response.TopGarments = make([]model.GarmentRank, 0, len(rows))
	for _, row := range rows {
		value, err := decimal.NewFromString(row.TotalValue)
		if err != nil {
			return response, fmt.Errorf("%w: malformed garment value %q", ErrValidation, row.TotalValue)
		}
		response.TopGarments = append(response.TopGarments, model.GarmentRank{
			GarmentType: row.GarmentType,
			TotalOrders: row.TotalOrders,
			TotalValue:  value,
		})
	}

	return response, nil
}
