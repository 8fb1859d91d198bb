package services

import (
	"context"

	"go.uber.org/zap"

	"as-system/internal/dto"
	"as-system/internal/repositories"
	apperrors "as-system/pkg/errors"
)

type CustomerServiceInterface interface {
	GetCustomers(ctx context.Context, limit uint64, offset uint64) ([]dto.CustomerDTO, uint64, error)
	FindCustomer(ctx context.Context, id int) (*dto.CustomerDTO, error)
	CreateCustomer(ctx context.Context, payload dto.CreateCustomerDTO) (int, error)
	GetCustomerProducts(ctx context.Context, customerID int, limit uint64, offset uint64) ([]dto.CustomerProductDTO, uint64, error)
	FindCustomerProduct(ctx context.Context, id int) (*dto.CustomerProductDTO, error)
	CreateCustomerProduct(ctx context.Context, payload dto.CreateCustomerProductDTO) (int, error)
}

// CustomerService - тонкая обертка над реестрами клиентов и их изделий.
type CustomerService struct {
	customerRepo repositories.CustomerRepositoryInterface
	productRepo  repositories.CustomerProductRepositoryInterface
	logger       *zap.Logger
}

func NewCustomerService(
	customerRepo repositories.CustomerRepositoryInterface,
	productRepo repositories.CustomerProductRepositoryInterface,
	logger *zap.Logger,
) CustomerServiceInterface {
	return &CustomerService{
		customerRepo: customerRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

func (s *CustomerService) GetCustomers(ctx context.Context, limit uint64, offset uint64) ([]dto.CustomerDTO, uint64, error) {
	return s.customerRepo.GetCustomers(ctx, limit, offset)
}

func (s *CustomerService) FindCustomer(ctx context.Context, id int) (*dto.CustomerDTO, error) {
	return s.customerRepo.FindCustomer(ctx, id)
}

func (s *CustomerService) CreateCustomer(ctx context.Context, payload dto.CreateCustomerDTO) (int, error) {
	newID, err := s.customerRepo.CreateCustomer(ctx, payload)
	if err != nil {
		s.logger.Error("Ошибка создания клиента", zap.Error(err))
		return 0, err
	}
	return newID, nil
}

func (s *CustomerService) GetCustomerProducts(ctx context.Context, customerID int, limit uint64, offset uint64) ([]dto.CustomerProductDTO, uint64, error) {
	return s.productRepo.GetCustomerProducts(ctx, customerID, limit, offset)
}

func (s *CustomerService) FindCustomerProduct(ctx context.Context, id int) (*dto.CustomerProductDTO, error) {
	return s.productRepo.FindCustomerProduct(ctx, id)
}

func (s *CustomerService) CreateCustomerProduct(ctx context.Context, payload dto.CreateCustomerProductDTO) (int, error) {
	if _, err := s.customerRepo.FindCustomer(ctx, payload.CustomerID); err != nil {
		return 0, apperrors.NewBadRequestError("клиент %d не существует", payload.CustomerID)
	}
	newID, err := s.productRepo.CreateCustomerProduct(ctx, payload)
	if err != nil {
		s.logger.Error("Ошибка создания изделия клиента", zap.Error(err))
		return 0, err
	}
	return newID, nil
}
