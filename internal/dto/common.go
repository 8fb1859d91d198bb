package dto

type ShortEmployeeDTO struct {
	ID  int    `json:"id"`
	Fio string `json:"fio"`
}

type ShortCustomerDTO struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type ShortCustomerProductDTO struct {
	ID          int    `json:"id"`
	ProductName string `json:"product_name"`
	ModelCode   string `json:"model_code"`
}
