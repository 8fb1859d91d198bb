package services

import (
	"context"

	"go.uber.org/zap"

	"as-system/internal/dto"
	"as-system/internal/repositories"
	apperrors "as-system/pkg/errors"
)

type EmployeeServiceInterface interface {
	GetEmployees(ctx context.Context, limit uint64, offset uint64) ([]dto.EmployeeDTO, uint64, error)
	FindEmployee(ctx context.Context, id int) (*dto.EmployeeDTO, error)
}

type EmployeeService struct {
	employeeRepo repositories.EmployeeRepositoryInterface
	logger       *zap.Logger
}

func NewEmployeeService(employeeRepo repositories.EmployeeRepositoryInterface, logger *zap.Logger) EmployeeServiceInterface {
	return &EmployeeService{employeeRepo: employeeRepo, logger: logger}
}

func (s *EmployeeService) GetEmployees(ctx context.Context, limit uint64, offset uint64) ([]dto.EmployeeDTO, uint64, error) {
	return s.employeeRepo.GetEmployees(ctx, limit, offset)
}

func (s *EmployeeService) FindEmployee(ctx context.Context, id int) (*dto.EmployeeDTO, error) {
	employee, err := s.employeeRepo.FindEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, apperrors.NewNotFoundError("сотрудник не найден")
	}
	return &dto.EmployeeDTO{
		ID:    employee.ID,
		Fio:   employee.Fio,
		Login: employee.Login,
		Phone: employee.Phone,
		Role:  employee.Role,
	}, nil
}
