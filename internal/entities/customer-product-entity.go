package entities

import (
	"as-system/pkg/types"
)

// CustomerProduct - конкретное изделие клиента, которое обслуживается.
type CustomerProduct struct {
	ID          int    `json:"id"`
	CustomerID  int    `json:"customer_id"`
	ProductName string `json:"product_name"`
	ModelCode   string `json:"model_code"`

	types.BaseEntity
}
