package entities

import (
	"as-system/pkg/types"
)

type Employee struct {
	ID       int    `json:"id"`
	Fio      string `json:"fio"`
	Login    string `json:"login"`
	Password string `json:"-"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`

	types.BaseEntity
}
