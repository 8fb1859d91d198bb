package routes

import (
	"github.com/labstack/echo/v4"

	"as-system/internal/controllers"
)

func runRequestRouter(
	secureGroup *echo.Group,
	requestCtrl *controllers.RequestController,
	assignmentCtrl *controllers.AssignmentController,
) {
	{
		secureGroup.GET("/requests", requestCtrl.GetRequests)
		secureGroup.POST("/requests", requestCtrl.CreateRequest)
		secureGroup.DELETE("/requests", requestCtrl.DeleteRequests)
		secureGroup.GET("/requests/:id", requestCtrl.FindRequest)
		secureGroup.PUT("/requests/:id", requestCtrl.UpdateRequest)
		secureGroup.DELETE("/requests/:id", requestCtrl.DeleteRequest)
		secureGroup.PUT("/requests/:id/status", requestCtrl.ChangeRequestStatus)
	}
	{
		secureGroup.PATCH("/requests/:id/assignment", assignmentCtrl.ResolveAssignment)
		secureGroup.POST("/requests/:id/reassign", assignmentCtrl.ReassignRequest)
	}
}
