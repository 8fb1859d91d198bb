package errors

import (
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")

	// Контекст
	ErrEmployeeNotFoundInContext = fmt.Errorf("сотрудник не найден в контексте запроса")
)

// HttpError - типизированная ошибка, которая доходит до HTTP-слоя как есть.
// Code определяет статус ответа, Message показывается клиенту,
// Err и Context остаются для логов.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: context,
	}
}

// Фабрики под таксономию ошибок ядра: Validation / NotFound / Conflict / AccessDenied.

func NewBadRequestError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusBadRequest, fmt.Sprintf(format, args...), nil, nil)
}

func NewNotFoundError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusNotFound, fmt.Sprintf(format, args...), nil, nil)
}

func NewConflictError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusConflict, fmt.Sprintf(format, args...), nil, nil)
}

func NewAccessDeniedError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusForbidden, fmt.Sprintf(format, args...), nil, nil)
}
