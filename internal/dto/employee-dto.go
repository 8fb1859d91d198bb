package dto

type EmployeeDTO struct {
	ID    int    `json:"id"`
	Fio   string `json:"fio"`
	Login string `json:"login"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}
