package utils

import (
	"context"

	"as-system/pkg/contextkeys"
	apperrors "as-system/pkg/errors"
)

func GetEmployeeIDFromCtx(ctx context.Context) (int, error) {
	employeeID, ok := ctx.Value(contextkeys.EmployeeIDKey).(int)
	if !ok || employeeID == 0 {
		return 0, apperrors.ErrEmployeeNotFoundInContext
	}
	return employeeID, nil
}

func GetEmployeeRoleFromCtx(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextkeys.EmployeeRoleKey).(string)
	if !ok || role == "" {
		return "", apperrors.ErrEmployeeNotFoundInContext
	}
	return role, nil
}
