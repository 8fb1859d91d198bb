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

type CustomerProductController struct {
	customerService services.CustomerServiceInterface
	logger          *zap.Logger
}

func NewCustomerProductController(customerService services.CustomerServiceInterface, logger *zap.Logger) *CustomerProductController {
	return &CustomerProductController{
		customerService: customerService,
		logger:          logger,
	}
}

func (c *CustomerProductController) GetCustomerProducts(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	// customerId=0 означает "все изделия".
	customerID := 0
	if raw := ctx.QueryParam("customerId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректный customerId"), c.logger)
		}
		customerID = parsed
	}

	res, totalCount, err := c.customerService.GetCustomerProducts(ctx.Request().Context(), customerID, uint64(filter.Limit), uint64(filter.Offset))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Изделия успешно получены", http.StatusOK, totalCount)
}

func (c *CustomerProductController) FindCustomerProduct(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID"), c.logger)
	}

	res, err := c.customerService.FindCustomerProduct(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Изделие успешно получено", http.StatusOK)
}

func (c *CustomerProductController) CreateCustomerProduct(ctx echo.Context) error {
	var payload dto.CreateCustomerProductDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "некорректное тело запроса"), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	newID, err := c.customerService.CreateCustomerProduct(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]int{"id": newID}, "Изделие успешно создано", http.StatusCreated)
}
