package entities

import (
	"github.com/aarondl/null/v8"

	"as-system/pkg/types"
)

// Request - заявка A/S, ведется от приема до завершения.
// EngineerID - денормализованный указатель на текущего инженера;
// источником истины для "кому предложена работа" остается журнал назначений.
type Request struct {
	ID                int         `json:"id"`
	RequestNo         string      `json:"request_no"`
	ReceiverID        int         `json:"receiver_id"`
	EngineerID        int         `json:"engineer_id"`
	CustomerID        int         `json:"customer_id"`
	CustomerProductID int         `json:"customer_product_id"`
	Content           string      `json:"content"`
	Status            string      `json:"status"`
	CompletedAt       null.Time   `json:"completed_at"`

	types.BaseEntity
}
