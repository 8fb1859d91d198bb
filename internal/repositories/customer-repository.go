package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"as-system/internal/dto"
	apperrors "as-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepositoryInterface interface {
	GetCustomers(ctx context.Context, limit uint64, offset uint64) ([]dto.CustomerDTO, uint64, error)
	FindCustomer(ctx context.Context, id int) (*dto.CustomerDTO, error)
	CreateCustomer(ctx context.Context, payload dto.CreateCustomerDTO) (int, error)
}

type CustomerRepository struct {
	storage *pgxpool.Pool
}

func NewCustomerRepository(storage *pgxpool.Pool) CustomerRepositoryInterface {
	return &CustomerRepository{storage: storage}
}

func (r *CustomerRepository) GetCustomers(ctx context.Context, limit uint64, offset uint64) ([]dto.CustomerDTO, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета клиентов: %w", err)
	}

	rows, err := r.storage.Query(ctx,
		`SELECT id, name, phone, created_at FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка клиентов: %w", err)
	}
	defer rows.Close()

	customers := make([]dto.CustomerDTO, 0)
	for rows.Next() {
		var c dto.CustomerDTO
		var createdAt time.Time
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования клиента: %w", err)
		}
		c.CreatedAt = createdAt.Local().Format("2006-01-02 15:04:05")
		customers = append(customers, c)
	}
	return customers, total, nil
}

func (r *CustomerRepository) FindCustomer(ctx context.Context, id int) (*dto.CustomerDTO, error) {
	var c dto.CustomerDTO
	var createdAt time.Time
	err := r.storage.QueryRow(ctx,
		`SELECT id, name, phone, created_at FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("клиент не найден")
		}
		return nil, fmt.Errorf("ошибка при поиске клиента %d: %w", id, err)
	}
	c.CreatedAt = createdAt.Local().Format("2006-01-02 15:04:05")
	return &c, nil
}

func (r *CustomerRepository) CreateCustomer(ctx context.Context, payload dto.CreateCustomerDTO) (int, error) {
	var newID int
	err := r.storage.QueryRow(ctx,
		`INSERT INTO customers (name, phone, created_at, updated_at) VALUES ($1, $2, NOW(), NOW()) RETURNING id`,
		payload.Name, payload.Phone).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания клиента: %w", err)
	}
	return newID, nil
}
