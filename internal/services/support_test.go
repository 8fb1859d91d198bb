package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"as-system/internal/dto"
	"as-system/internal/entities"
	"as-system/internal/repositories"
	"as-system/pkg/constants"
	"as-system/pkg/contextkeys"
	apperrors "as-system/pkg/errors"
	"as-system/pkg/eventbus"
	"as-system/pkg/types"
)

// Фейки репозиториев хранят состояние в памяти и повторяют контрактное
// поведение настоящих реализаций (включая ошибки Conflict/NotFound).

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeEmployeeRepo struct {
	employees map[int]*entities.Employee
}

func (r *fakeEmployeeRepo) GetEmployees(ctx context.Context, limit uint64, offset uint64) ([]dto.EmployeeDTO, uint64, error) {
	return nil, 0, nil
}

func (r *fakeEmployeeRepo) FindEmployee(ctx context.Context, id int) (*entities.Employee, error) {
	if e, ok := r.employees[id]; ok {
		return e, nil
	}
	return nil, apperrors.NewNotFoundError("сотрудник не найден")
}

func (r *fakeEmployeeRepo) FindEmployeeByLogin(ctx context.Context, login string) (*entities.Employee, error) {
	for _, e := range r.employees {
		if e.Login == login {
			return e, nil
		}
	}
	return nil, apperrors.NewNotFoundError("сотрудник не найден")
}

type fakeCustomerRepo struct {
	customers map[int]*dto.CustomerDTO
}

func (r *fakeCustomerRepo) GetCustomers(ctx context.Context, limit uint64, offset uint64) ([]dto.CustomerDTO, uint64, error) {
	return nil, 0, nil
}

func (r *fakeCustomerRepo) FindCustomer(ctx context.Context, id int) (*dto.CustomerDTO, error) {
	if c, ok := r.customers[id]; ok {
		return c, nil
	}
	return nil, apperrors.NewNotFoundError("клиент не найден")
}

func (r *fakeCustomerRepo) CreateCustomer(ctx context.Context, payload dto.CreateCustomerDTO) (int, error) {
	return 0, nil
}

type fakeProductRepo struct {
	products map[int]*dto.CustomerProductDTO
}

func (r *fakeProductRepo) GetCustomerProducts(ctx context.Context, customerID int, limit uint64, offset uint64) ([]dto.CustomerProductDTO, uint64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) FindCustomerProduct(ctx context.Context, id int) (*dto.CustomerProductDTO, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, apperrors.NewNotFoundError("изделие не найдено")
}

func (r *fakeProductRepo) CreateCustomerProduct(ctx context.Context, payload dto.CreateCustomerProductDTO) (int, error) {
	return 0, nil
}

type fakeRequestRepo struct {
	requests  map[int]*entities.Request
	views     map[int]*dto.RequestDTO
	list      []dto.RequestDTO
	lastScope repositories.RequestScope
	nextID    int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[int]*entities.Request),
		views:    make(map[int]*dto.RequestDTO),
	}
}

func (r *fakeRequestRepo) GetRequests(ctx context.Context, filter types.Filter, scope repositories.RequestScope) ([]dto.RequestDTO, uint64, error) {
	r.lastScope = scope
	return r.list, uint64(len(r.list)), nil
}

func (r *fakeRequestRepo) FindRequest(ctx context.Context, id int) (*dto.RequestDTO, error) {
	if v, ok := r.views[id]; ok {
		return v, nil
	}
	return nil, apperrors.NewNotFoundError("заявка не найдена")
}

func (r *fakeRequestRepo) CreateRequestInTx(ctx context.Context, tx pgx.Tx, receiverID int, payload dto.CreateRequestDTO) (int, string, error) {
	r.nextID++
	id := r.nextID
	requestNo := fmt.Sprintf("AS-%s-%d", time.Now().Format("20060102"), id)
	r.requests[id] = &entities.Request{
		ID:                id,
		RequestNo:         requestNo,
		ReceiverID:        receiverID,
		EngineerID:        payload.EngineerID,
		CustomerID:        payload.CustomerID,
		CustomerProductID: payload.CustomerProductID,
		Content:           payload.Content,
		Status:            constants.RequestStatusReceived,
	}
	return id, requestNo, nil
}

func (r *fakeRequestRepo) FindRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, id int) (*entities.Request, error) {
	if req, ok := r.requests[id]; ok {
		return req, nil
	}
	return nil, apperrors.NewNotFoundError("заявка не найдена")
}

func (r *fakeRequestRepo) UpdateRequestInTx(ctx context.Context, tx pgx.Tx, id int, payload dto.UpdateRequestDTO) error {
	req, ok := r.requests[id]
	if !ok {
		return apperrors.NewNotFoundError("заявка не найдена")
	}
	if payload.EngineerID != nil {
		req.EngineerID = *payload.EngineerID
	}
	if payload.CustomerID != nil {
		req.CustomerID = *payload.CustomerID
	}
	if payload.CustomerProductID != nil {
		req.CustomerProductID = *payload.CustomerProductID
	}
	if payload.Content != nil {
		req.Content = *payload.Content
	}
	return nil
}

func (r *fakeRequestRepo) ChangeStatusInTx(ctx context.Context, tx pgx.Tx, id int, newStatus string) error {
	req, ok := r.requests[id]
	if !ok {
		return apperrors.NewNotFoundError("заявка не найдена")
	}
	req.Status = newStatus
	if newStatus == constants.RequestStatusCompleted {
		if !req.CompletedAt.Valid {
			req.CompletedAt = null.TimeFrom(time.Now())
		}
	} else {
		req.CompletedAt = null.Time{}
	}
	return nil
}

func (r *fakeRequestRepo) SetEngineerInTx(ctx context.Context, tx pgx.Tx, id int, engineerID int) error {
	req, ok := r.requests[id]
	if !ok {
		return apperrors.NewNotFoundError("заявка не найдена")
	}
	req.EngineerID = engineerID
	return nil
}

func (r *fakeRequestRepo) DeleteRequestInTx(ctx context.Context, tx pgx.Tx, id int) error {
	if _, ok := r.requests[id]; !ok {
		return apperrors.NewNotFoundError("заявка не найдена")
	}
	delete(r.requests, id)
	return nil
}

type fakeAssignmentRepo struct {
	entries []*entities.AssignmentLog
	nextID  int
}

func (r *fakeAssignmentRepo) GetAssignmentsByRequest(ctx context.Context, requestID int) ([]dto.AssignmentLogDTO, error) {
	var out []dto.AssignmentLogDTO
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.RequestID != requestID {
			continue
		}
		item := dto.AssignmentLogDTO{
			ID:             e.ID,
			RequestID:      e.RequestID,
			Engineer:       dto.ShortEmployeeDTO{ID: e.EngineerID},
			AssignmentType: e.AssignmentType,
			Status:         e.Status,
			AssignedAt:     e.AssignedAt.Format(time.RFC3339),
		}
		if e.RejectionReason.Valid {
			reason := e.RejectionReason.String
			item.RejectionReason = &reason
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) CreateAssignmentInTx(ctx context.Context, tx pgx.Tx, entry entities.AssignmentLog) (int, error) {
	r.nextID++
	entry.ID = r.nextID
	entry.Status = constants.AssignmentStatusPending
	entry.AssignedAt = time.Now().Add(time.Duration(r.nextID) * time.Millisecond)
	r.entries = append(r.entries, &entry)
	return entry.ID, nil
}

func (r *fakeAssignmentRepo) FindCurrentPendingInTx(ctx context.Context, tx pgx.Tx, requestID int) (*entities.AssignmentLog, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.RequestID == requestID && e.Status == constants.AssignmentStatusPending {
			return e, nil
		}
	}
	return nil, apperrors.NewConflictError("по заявке %d нет ожидающего назначения", requestID)
}

func (r *fakeAssignmentRepo) ResolveAssignmentInTx(ctx context.Context, tx pgx.Tx, id int, newStatus string, reason null.String) error {
	for _, e := range r.entries {
		if e.ID != id {
			continue
		}
		if e.Status != constants.AssignmentStatusPending {
			return apperrors.NewConflictError("назначение %d уже разрешено", id)
		}
		e.Status = newStatus
		e.StatusChangedAt = null.TimeFrom(time.Now())
		e.RejectionReason = reason
		return nil
	}
	return apperrors.NewConflictError("назначение %d уже разрешено", id)
}

func (r *fakeAssignmentRepo) CancelPendingInTx(ctx context.Context, tx pgx.Tx, requestID int) (int64, error) {
	var cancelled int64
	for _, e := range r.entries {
		if e.RequestID == requestID && e.Status == constants.AssignmentStatusPending {
			e.Status = constants.AssignmentStatusCancelled
			e.StatusChangedAt = null.TimeFrom(time.Now())
			cancelled++
		}
	}
	return cancelled, nil
}

// entriesFor возвращает записи журнала по заявке в порядке создания.
func (r *fakeAssignmentRepo) entriesFor(requestID int) []*entities.AssignmentLog {
	var out []*entities.AssignmentLog
	for _, e := range r.entries {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out
}

func authCtx(employeeID int, role string) context.Context {
	ctx := context.WithValue(context.Background(), contextkeys.EmployeeIDKey, employeeID)
	return context.WithValue(ctx, contextkeys.EmployeeRoleKey, role)
}

// collectEvents подписывает сборщик на события шины до вызова тестируемого кода.
func collectEvents(bus *eventbus.Bus, names ...string) <-chan eventbus.Event {
	ch := make(chan eventbus.Event, 16)
	for _, name := range names {
		bus.Subscribe(name, func(ctx context.Context, event eventbus.Event) error {
			ch <- event
			return nil
		})
	}
	return ch
}

func waitEvent(t *testing.T, ch <-chan eventbus.Event) eventbus.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(2 * time.Second):
		require.FailNow(t, "событие не пришло за отведенное время")
		return nil
	}
}

func requireNoEvent(t *testing.T, ch <-chan eventbus.Event) {
	t.Helper()
	select {
	case event := <-ch:
		require.FailNowf(t, "неожиданное событие", "%s", event.Name())
	case <-time.After(100 * time.Millisecond):
	}
}
