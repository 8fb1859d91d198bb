package entities

import (
	"as-system/pkg/types"
)

type Customer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`

	types.BaseEntity
}
