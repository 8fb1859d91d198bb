package dto

type CreateCustomerDTO struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Phone string `json:"phone" validate:"required,phone_kr"`
}

type CustomerDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

type CreateCustomerProductDTO struct {
	CustomerID  int    `json:"customerId" validate:"required,gt=0"`
	ProductName string `json:"productName" validate:"required,min=2,max=100"`
	ModelCode   string `json:"modelCode" validate:"required,min=1,max=64"`
}

type CustomerProductDTO struct {
	ID          int    `json:"id"`
	CustomerID  int    `json:"customer_id"`
	ProductName string `json:"product_name"`
	ModelCode   string `json:"model_code"`
	CreatedAt   string `json:"created_at"`
}
