package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"as-system/internal/dto"
	"as-system/internal/entities"
	apperrors "as-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EmployeeRepositoryInterface interface {
	GetEmployees(ctx context.Context, limit uint64, offset uint64) ([]dto.EmployeeDTO, uint64, error)
	FindEmployee(ctx context.Context, id int) (*entities.Employee, error)
	FindEmployeeByLogin(ctx context.Context, login string) (*entities.Employee, error)
}

type EmployeeRepository struct {
	storage *pgxpool.Pool
}

func NewEmployeeRepository(storage *pgxpool.Pool) EmployeeRepositoryInterface {
	return &EmployeeRepository{storage: storage}
}

func (r *EmployeeRepository) GetEmployees(ctx context.Context, limit uint64, offset uint64) ([]dto.EmployeeDTO, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета сотрудников: %w", err)
	}

	rows, err := r.storage.Query(ctx,
		`SELECT id, fio, login, phone, role FROM employees ORDER BY fio LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка сотрудников: %w", err)
	}
	defer rows.Close()

	employees := make([]dto.EmployeeDTO, 0)
	for rows.Next() {
		var e dto.EmployeeDTO
		if err := rows.Scan(&e.ID, &e.Fio, &e.Login, &e.Phone, &e.Role); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования сотрудника: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, total, nil
}

func (r *EmployeeRepository) FindEmployee(ctx context.Context, id int) (*entities.Employee, error) {
	return findOneEmployee(ctx, r.storage, `WHERE id = $1`, id)
}

func (r *EmployeeRepository) FindEmployeeByLogin(ctx context.Context, login string) (*entities.Employee, error) {
	return findOneEmployee(ctx, r.storage, `WHERE login = $1`, login)
}

// findOneEmployee работает и с пулом, и с транзакцией.
func findOneEmployee(ctx context.Context, q querier, where string, arg interface{}) (*entities.Employee, error) {
	query := `SELECT id, fio, login, password, phone, role, created_at, updated_at FROM employees ` + where

	var e entities.Employee
	var createdAt, updatedAt time.Time
	err := q.QueryRow(ctx, query, arg).Scan(
		&e.ID, &e.Fio, &e.Login, &e.Password, &e.Phone, &e.Role, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("сотрудник не найден")
		}
		return nil, fmt.Errorf("ошибка при поиске сотрудника: %w", err)
	}
	e.CreatedAt = &createdAt
	e.UpdatedAt = &updatedAt
	return &e, nil
}
