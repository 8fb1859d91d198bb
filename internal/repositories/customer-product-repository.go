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

type CustomerProductRepositoryInterface interface {
	GetCustomerProducts(ctx context.Context, customerID int, limit uint64, offset uint64) ([]dto.CustomerProductDTO, uint64, error)
	FindCustomerProduct(ctx context.Context, id int) (*dto.CustomerProductDTO, error)
	CreateCustomerProduct(ctx context.Context, payload dto.CreateCustomerProductDTO) (int, error)
}

type CustomerProductRepository struct {
	storage *pgxpool.Pool
}

func NewCustomerProductRepository(storage *pgxpool.Pool) CustomerProductRepositoryInterface {
	return &CustomerProductRepository{storage: storage}
}

func (r *CustomerProductRepository) GetCustomerProducts(ctx context.Context, customerID int, limit uint64, offset uint64) ([]dto.CustomerProductDTO, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM customer_products WHERE ($1 = 0 OR customer_id = $1)`, customerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета изделий: %w", err)
	}

	rows, err := r.storage.Query(ctx,
		`SELECT id, customer_id, product_name, model_code, created_at
		 FROM customer_products
		 WHERE ($1 = 0 OR customer_id = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		customerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка изделий: %w", err)
	}
	defer rows.Close()

	products := make([]dto.CustomerProductDTO, 0)
	for rows.Next() {
		var p dto.CustomerProductDTO
		var createdAt time.Time
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.ProductName, &p.ModelCode, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования изделия: %w", err)
		}
		p.CreatedAt = createdAt.Local().Format("2006-01-02 15:04:05")
		products = append(products, p)
	}
	return products, total, nil
}

func (r *CustomerProductRepository) FindCustomerProduct(ctx context.Context, id int) (*dto.CustomerProductDTO, error) {
	var p dto.CustomerProductDTO
	var createdAt time.Time
	err := r.storage.QueryRow(ctx,
		`SELECT id, customer_id, product_name, model_code, created_at FROM customer_products WHERE id = $1`, id).
		Scan(&p.ID, &p.CustomerID, &p.ProductName, &p.ModelCode, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("изделие клиента не найдено")
		}
		return nil, fmt.Errorf("ошибка при поиске изделия %d: %w", id, err)
	}
	p.CreatedAt = createdAt.Local().Format("2006-01-02 15:04:05")
	return &p, nil
}

func (r *CustomerProductRepository) CreateCustomerProduct(ctx context.Context, payload dto.CreateCustomerProductDTO) (int, error) {
	var newID int
	err := r.storage.QueryRow(ctx,
		`INSERT INTO customer_products (customer_id, product_name, model_code, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`,
		payload.CustomerID, payload.ProductName, payload.ModelCode).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания изделия клиента: %w", err)
	}
	return newID, nil
}
