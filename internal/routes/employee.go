package routes

import (
	"github.com/labstack/echo/v4"

	"as-system/internal/controllers"
)

func runEmployeeRouter(secureGroup *echo.Group, employeeCtrl *controllers.EmployeeController) {
	{
		secureGroup.GET("/employees", employeeCtrl.GetEmployees)
		secureGroup.GET("/employees/:id", employeeCtrl.FindEmployee)
	}
}
