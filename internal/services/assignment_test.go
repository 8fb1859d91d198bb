package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"as-system/internal/dto"
	"as-system/internal/entities"
	"as-system/internal/events"
	"as-system/pkg/constants"
	apperrors "as-system/pkg/errors"
	"as-system/pkg/eventbus"
)

type assignmentFixture struct {
	service        AssignmentServiceInterface
	requestService RequestServiceInterface
	requestRepo    *fakeRequestRepo
	assignmentRepo *fakeAssignmentRepo
	bus            *eventbus.Bus
}

func newAssignmentFixture() *assignmentFixture {
	logger := zap.NewNop()
	requestRepo := newFakeRequestRepo()
	assignmentRepo := &fakeAssignmentRepo{}
	employeeRepo := &fakeEmployeeRepo{employees: map[int]*entities.Employee{
		1: {ID: 1, Fio: "Приемщик Тестовый", Role: constants.RoleStaff},
		2: {ID: 2, Fio: "Инженер Тестовый", Role: constants.RoleEngineer},
		5: {ID: 5, Fio: "Второй Инженер", Role: constants.RoleEngineer},
	}}
	customerRepo := &fakeCustomerRepo{customers: map[int]*dto.CustomerDTO{
		3: {ID: 3, Name: "Ким Чхольсу", Phone: "010-1234-5678"},
	}}
	productRepo := &fakeProductRepo{products: map[int]*dto.CustomerProductDTO{
		4: {ID: 4, CustomerID: 3, ProductName: "Стиральная машина", ModelCode: "WM-100"},
	}}
	bus := eventbus.New(logger)

	requestService := NewRequestService(
		fakeTxManager{}, requestRepo, assignmentRepo, employeeRepo, customerRepo, productRepo, bus, logger,
	)
	service := NewAssignmentService(
		fakeTxManager{}, requestRepo, assignmentRepo, employeeRepo, bus, logger,
	)
	return &assignmentFixture{
		service:        service,
		requestService: requestService,
		requestRepo:    requestRepo,
		assignmentRepo: assignmentRepo,
		bus:            bus,
	}
}

// createRequest заводит заявку со свежим PENDING-предложением инженеру 2.
func (f *assignmentFixture) createRequest(t *testing.T) int {
	t.Helper()
	res, err := f.requestService.CreateRequest(authCtx(1, constants.RoleStaff), dto.CreateRequestDTO{
		EngineerID:        2,
		CustomerID:        3,
		CustomerProductID: 4,
		Content:           "не сливает воду",
	})
	require.NoError(t, err)
	return res.RequestID
}

func TestResolveAssignment_Accepted(t *testing.T) {
	f := newAssignmentFixture()
	requestID := f.createRequest(t)
	resolvedCh := collectEvents(f.bus, "assignment.resolved")
	statusCh := collectEvents(f.bus, "request.status.changed")

	err := f.service.ResolveAssignment(authCtx(2, constants.RoleEngineer), requestID, dto.ResolveAssignmentDTO{
		Status: constants.AssignmentStatusAccepted,
	})
	require.NoError(t, err)

	entries := f.assignmentRepo.entriesFor(requestID)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.AssignmentStatusAccepted, entries[0].Status)
	assert.True(t, entries[0].StatusChangedAt.Valid)
	assert.False(t, entries[0].RejectionReason.Valid)

	// Принятие переводит заявку в ремонт.
	assert.Equal(t, constants.RequestStatusRepairing, f.requestRepo.requests[requestID].Status)
	assert.False(t, f.requestRepo.requests[requestID].CompletedAt.Valid)

	resolved := waitEvent(t, resolvedCh).(events.AssignmentResolvedEvent)
	assert.Equal(t, constants.AssignmentStatusAccepted, resolved.Status)
	assert.Equal(t, 2, resolved.EngineerID)

	statusEvent := waitEvent(t, statusCh).(events.RequestStatusChangedEvent)
	assert.Equal(t, constants.RequestStatusReceived, statusEvent.From)
	assert.Equal(t, constants.RequestStatusRepairing, statusEvent.To)
}

func TestResolveAssignment_Rejected(t *testing.T) {
	f := newAssignmentFixture()
	requestID := f.createRequest(t)
	statusCh := collectEvents(f.bus, "request.status.changed")

	reason := "занят другой заявкой"
	err := f.service.ResolveAssignment(authCtx(2, constants.RoleEngineer), requestID, dto.ResolveAssignmentDTO{
		Status: constants.AssignmentStatusRejected,
		Reason: &reason,
	})
	require.NoError(t, err)

	entries := f.assignmentRepo.entriesFor(requestID)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.AssignmentStatusRejected, entries[0].Status)
	assert.Equal(t, reason, entries[0].RejectionReason.String)

	// Отклонение не трогает статус заявки.
	assert.Equal(t, constants.RequestStatusReceived, f.requestRepo.requests[requestID].Status)
	requireNoEvent(t, statusCh)
}

func TestResolveAssignment_RejectedWithoutReason(t *testing.T) {
	f := newAssignmentFixture()
	requestID := f.createRequest(t)

	err := f.service.ResolveAssignment(authCtx(2, constants.RoleEngineer), requestID, dto.ResolveAssignmentDTO{
		Status: constants.AssignmentStatusRejected,
	})
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	entries := f.assignmentRepo.entriesFor(requestID)
	assert.Equal(t, constants.AssignmentStatusPending, entries[0].Status)
}

func TestResolveAssignment_CancelledKeepsNoReason(t *testing.T) {
	f := newAssignmentFixture()
	requestID := f.createRequest(t)

	// Причину разрешено хранить только у REJECTED, для CANCELLED она отбрасывается.
	reason := "передумали"
	err := f.service.ResolveAssignment(authCtx(1, constants.RoleAdmin), requestID, dto.ResolveAssignmentDTO{
		Status: constants.AssignmentStatusCancelled,
		Reason: &reason,
	})
	require.NoError(t, err)

	entries := f.assignmentRepo.entriesFor(requestID)
	assert.Equal(t, constants.AssignmentStatusCancelled, entries[0].Status)
	assert.False(t, entries[0].RejectionReason.Valid)
	assert.Equal(t, constants.RequestStatusReceived, f.requestRepo.requests[requestID].Status)
}

func TestResolveAssignment_NonTerminalStatus(t *testing.T) {
	f := newAssignmentFixture()
	requestID := f.createRequest(t)

	err := f.service.ResolveAssignment(authCtx(2, constants.RoleEngineer), requestID, dto.ResolveAssignmentDTO{
		Status: constants.AssignmentStatusPending,
	})
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestResolveAssignment_Twice(t *testing.T) {
	f := newAssignmentFixture()
	requestID := f.createRequest(t)
	ctx := authCtx(2, constants.RoleEngineer)

	require.NoError(t, f.service.ResolveAssignment(ctx, requestID, dto.ResolveAssignmentDTO{
		Status: constants.AssignmentStatusAccepted,
	}))

	// Второго PENDING нет, повторное разрешение - конфликт.
	err := f.service.ResolveAssignment(ctx, requestID, dto.ResolveAssignmentDTO{
		Status: constants.AssignmentStatusAccepted,
	})
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestReassignRequest(t *testing.T) {
	f := newAssignmentFixture()
	requestID := f.createRequest(t)
	offeredCh := collectEvents(f.bus, "assignment.offered")

	err := f.service.ReassignRequest(authCtx(1, constants.RoleAdmin), requestID, dto.ReassignRequestDTO{
		EmployeeID: 5,
	})
	require.NoError(t, err)

	// Указатель на инженера меняется сразу, не дожидаясь принятия.
	assert.Equal(t, 5, f.requestRepo.requests[requestID].EngineerID)

	entries := f.assignmentRepo.entriesFor(requestID)
	require.Len(t, entries, 2)
	assert.Equal(t, constants.AssignmentStatusCancelled, entries[0].Status)
	assert.Equal(t, constants.AssignmentStatusPending, entries[1].Status)
	assert.Equal(t, 5, entries[1].EngineerID)
	assert.Equal(t, 1, entries[1].OfferedByID.Int)

	event := waitEvent(t, offeredCh).(events.AssignmentOfferedEvent)
	assert.Equal(t, 5, event.EngineerID)
	assert.Equal(t, constants.AssignmentTypeManual, event.AssignmentType)
}

func TestReassignRequest_AfterRejection(t *testing.T) {
	f := newAssignmentFixture()
	requestID := f.createRequest(t)

	reason := "занят"
	require.NoError(t, f.service.ResolveAssignment(authCtx(2, constants.RoleEngineer), requestID, dto.ResolveAssignmentDTO{
		Status: constants.AssignmentStatusRejected,
		Reason: &reason,
	}))

	require.NoError(t, f.service.ReassignRequest(authCtx(1, constants.RoleAdmin), requestID, dto.ReassignRequestDTO{
		EmployeeID: 5,
	}))

	// Отклоненная запись остается в журнале как есть.
	entries := f.assignmentRepo.entriesFor(requestID)
	require.Len(t, entries, 2)
	assert.Equal(t, constants.AssignmentStatusRejected, entries[0].Status)
	assert.Equal(t, reason, entries[0].RejectionReason.String)
	assert.Equal(t, constants.AssignmentStatusPending, entries[1].Status)
}

func TestReassignRequest_UnknownEngineer(t *testing.T) {
	f := newAssignmentFixture()
	requestID := f.createRequest(t)

	err := f.service.ReassignRequest(authCtx(1, constants.RoleAdmin), requestID, dto.ReassignRequestDTO{
		EmployeeID: 404,
	})
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)

	// Журнал не тронут.
	entries := f.assignmentRepo.entriesFor(requestID)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.AssignmentStatusPending, entries[0].Status)
}

func TestReassignRequest_UnknownRequest(t *testing.T) {
	f := newAssignmentFixture()

	err := f.service.ReassignRequest(authCtx(1, constants.RoleAdmin), 404, dto.ReassignRequestDTO{
		EmployeeID: 5,
	})
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
