package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Mobile  string `json:"mobile" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

type UpdateMeasurementsRequest struct {
	// Measurements is a free-form JSON document owned by the measurement
	// team; the schema varies per garment category.
	Measurements     json.RawMessage `json:"measurements" binding:"required"`
	MeasurementPhoto string          `json:"measurementPhoto"`
}

type CustomerResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Mobile           string          `json:"mobile"`
	Email            string          `json:"email,omitempty"`
	Address          string          `json:"address,omitempty"`
	Measurements     json.RawMessage `json:"measurements,omitempty"`
	MeasurementPhoto string          `json:"measurementPhoto,omitempty"`
	CreatedAt        string          `json:"createdAt"`
}

// --- Interface ---

// CustomerService manages the customer directory and the measurement
// records attached to it.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (*CustomerResponse, error)
	GetByMobile(ctx context.Context, mobile string) (*CustomerResponse, error)
	ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error)
	UpdateMeasurements(ctx context.Context, id string, req UpdateMeasurementsRequest) (*CustomerResponse, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

// --- Implementation ---

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	if existing, err := s.repo.GetByMobile(ctx, req.Mobile); err == nil {
		// Booking the same mobile again returns the existing record so
		// showroom staff cannot fork a customer's history.
		return mapCustomerToResponse(existing), nil
	}

	code, err := s.generateCustomerCode(ctx)
	if err != nil {
		return nil, err
	}
	customer := &model.Customer{
		Code:    code,
		Name:    req.Name,
		Mobile:  req.Mobile,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return mapCustomerToResponse(customer), nil
}

func (s *customerService) generateCustomerCode(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("CUST-%d-", time.Now().Year())
	count, err := s.repo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to generate customer code: %w", err)
	}
	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid customer id", ErrValidation)
	}
	customer, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer", ErrNotFound)
		}
		return nil, err
	}
	return mapCustomerToResponse(customer), nil
}

func (s *customerService) GetByMobile(ctx context.Context, mobile string) (*CustomerResponse, error) {
	customer, err := s.repo.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer", ErrNotFound)
		}
		return nil, err
	}
	return mapCustomerToResponse(customer), nil
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	customers, total, err := s.repo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, *mapCustomerToResponse(&customers[i]))
	}
	return responses, total, nil
}

func (s *customerService) UpdateMeasurements(ctx context.Context, id string, req UpdateMeasurementsRequest) (*CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid customer id", ErrValidation)
	}
	if !json.Valid(req.Measurements) {
		return nil, fmt.Errorf("%w: measurements must be valid JSON", ErrValidation)
	}
	customer, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer", ErrNotFound)
		}
		return nil, err
	}

	customer.Measurements = string(req.Measurements)
	if req.MeasurementPhoto != "" {
		customer.MeasurementPhoto = req.MeasurementPhoto
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return mapCustomerToResponse(customer), nil
}

func mapCustomerToResponse(customer *model.Customer) *CustomerResponse {
	resp := &CustomerResponse{
		ID:               customer.ID.String(),
		Code:             customer.Code,
		Name:             customer.Name,
		Mobile:           customer.Mobile,
		Email:            customer.Email,
		Address:          customer.Address,
		MeasurementPhoto: customer.MeasurementPhoto,
		CreatedAt:        customer.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if customer.Measurements != "" {
		resp.Measurements = json.RawMessage(customer.Measurements)
	}
	return resp
}
