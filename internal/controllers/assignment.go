package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"as-system/internal/dto"
	"as-system/internal/services"
	"as-system/pkg/utils"
)

type AssignmentController struct {
	assignmentService services.AssignmentServiceInterface
	logger            *zap.Logger
}

func NewAssignmentController(
	assignmentService services.AssignmentServiceInterface,
	logger *zap.Logger,
) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// ResolveAssignment - инженер принимает или отклоняет текущее предложение
// по заявке; администратор может снять или просрочить его тем же вызовом.
func (c *AssignmentController) ResolveAssignment(ctx echo.Context) error {
	requestID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID"), c.logger)
	}

	var payload dto.ResolveAssignmentDTO
	if err = ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"), c.logger)
	}
	if err = ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err = c.assignmentService.ResolveAssignment(ctx.Request().Context(), requestID, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Назначение успешно разрешено", http.StatusOK)
}

func (c *AssignmentController) ReassignRequest(ctx echo.Context) error {
	requestID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID"), c.logger)
	}

	var payload dto.ReassignRequestDTO
	if err = ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"), c.logger)
	}
	if err = ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err = c.assignmentService.ReassignRequest(ctx.Request().Context(), requestID, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Заявка успешно переназначена", http.StatusOK)
}
