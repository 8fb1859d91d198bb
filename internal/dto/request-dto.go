package dto

type CreateRequestDTO struct {
	EngineerID        int    `json:"employeeId" validate:"required,gt=0"`
	CustomerID        int    `json:"customerId" validate:"required,gt=0"`
	CustomerProductID int    `json:"customerProductId" validate:"required,gt=0"`
	Content           string `json:"content" validate:"required,min=2,max=2000"`
}

type CreateRequestResponseDTO struct {
	RequestID int    `json:"requestId"`
	RequestNo string `json:"requestNo"`
}

type UpdateRequestDTO struct {
	EngineerID        *int    `json:"employeeId,omitempty" validate:"omitempty,gt=0"`
	CustomerID        *int    `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	CustomerProductID *int    `json:"customerProductId,omitempty" validate:"omitempty,gt=0"`
	Content           *string `json:"content,omitempty" validate:"omitempty,min=2,max=2000"`
}

type ChangeRequestStatusDTO struct {
	Status string `json:"status" validate:"required,request_status"`
	Notes  string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type RequestDTO struct {
	ID               int                     `json:"id"`
	RequestNo        string                  `json:"request_no"`
	Status           string                  `json:"status"`
	Content          string                  `json:"content"`
	Receiver         ShortEmployeeDTO        `json:"receiver"`
	Engineer         *ShortEmployeeDTO       `json:"engineer,omitempty"`
	Customer         ShortCustomerDTO        `json:"customer"`
	CustomerProduct  ShortCustomerProductDTO `json:"customer_product"`
	AssignmentStatus string                  `json:"assignment_status"`
	CompletedAt      *string                 `json:"completed_at,omitempty"`
	CreatedAt        string                  `json:"created_at"`
}

type RequestDetailDTO struct {
	RequestDTO
	Assignments []AssignmentLogDTO `json:"assignments"`
}

type BulkDeleteRequestsDTO struct {
	IDs []int `json:"ids" validate:"required,min=1,dive,gt=0"`
}
