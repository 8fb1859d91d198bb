package routes

import (
	"github.com/labstack/echo/v4"

	"as-system/internal/controllers"
)

func runCustomerRouter(
	secureGroup *echo.Group,
	customerCtrl *controllers.CustomerController,
	productCtrl *controllers.CustomerProductController,
) {
	{
		secureGroup.GET("/customers", customerCtrl.GetCustomers)
		secureGroup.POST("/customers", customerCtrl.CreateCustomer)
		secureGroup.GET("/customers/:id", customerCtrl.FindCustomer)
	}
	{
		secureGroup.GET("/customer-products", productCtrl.GetCustomerProducts)
		secureGroup.POST("/customer-products", productCtrl.CreateCustomerProduct)
		secureGroup.GET("/customer-products/:id", productCtrl.FindCustomerProduct)
	}
}
