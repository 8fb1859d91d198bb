package services

import (
	"context"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"as-system/internal/dto"
	"as-system/internal/entities"
	"as-system/internal/events"
	"as-system/internal/repositories"
	"as-system/pkg/constants"
	apperrors "as-system/pkg/errors"
	"as-system/pkg/eventbus"
	"as-system/pkg/utils"
)

type AssignmentServiceInterface interface {
	ResolveAssignment(ctx context.Context, requestID int, payload dto.ResolveAssignmentDTO) error
	ReassignRequest(ctx context.Context, requestID int, payload dto.ReassignRequestDTO) error
}

// AssignmentService - диспетчер и автомат состояний назначений.
// Все мутации журнала идут под блокировкой строки заявки (FOR UPDATE),
// поэтому конкурирующие переназначения и разрешения по одной заявке
// выполняются строго по очереди.
type AssignmentService struct {
	txManager      repositories.TxManagerInterface
	requestRepo    repositories.RequestRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	employeeRepo   repositories.EmployeeRepositoryInterface
	bus            *eventbus.Bus
	logger         *zap.Logger
}

func NewAssignmentService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) AssignmentServiceInterface {
	return &AssignmentService{
		txManager:      txManager,
		requestRepo:    requestRepo,
		assignmentRepo: assignmentRepo,
		employeeRepo:   employeeRepo,
		bus:            bus,
		logger:         logger,
	}
}

// ResolveAssignment переводит текущее PENDING-предложение в терминальный статус.
// ACCEPTED дополнительно переводит заявку в REPAIRING; REJECTED сохраняет
// причину; CANCELLED и EXPIRED статус заявки не трогают и причину не несут.
func (s *AssignmentService) ResolveAssignment(ctx context.Context, requestID int, payload dto.ResolveAssignmentDTO) error {
	actorID, err := utils.GetEmployeeIDFromCtx(ctx)
	if err != nil {
		return err
	}

	if !constants.IsTerminalAssignmentStatus(payload.Status) {
		return apperrors.NewBadRequestError("статус %s не является терминальным", payload.Status)
	}
	if payload.Status == constants.AssignmentStatusRejected && (payload.Reason == nil || *payload.Reason == "") {
		return apperrors.NewBadRequestError("для отклонения требуется указать причину")
	}

	var resolved events.AssignmentResolvedEvent
	var statusChanged *events.RequestStatusChangedEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, txErr := s.requestRepo.FindRequestForUpdateInTx(ctx, tx, requestID)
		if txErr != nil {
			return txErr
		}

		entry, txErr := s.assignmentRepo.FindCurrentPendingInTx(ctx, tx, requestID)
		if txErr != nil {
			return txErr
		}

		// Причина сохраняется только для REJECTED.
		reason := null.String{}
		if payload.Status == constants.AssignmentStatusRejected {
			reason = null.StringFrom(*payload.Reason)
		}

		if txErr = s.assignmentRepo.ResolveAssignmentInTx(ctx, tx, entry.ID, payload.Status, reason); txErr != nil {
			return txErr
		}

		resolved = events.AssignmentResolvedEvent{
			EventID:    uuid.New(),
			RequestID:  requestID,
			RequestNo:  request.RequestNo,
			EntryID:    entry.ID,
			EngineerID: entry.EngineerID,
			ReceiverID: request.ReceiverID,
			Status:     payload.Status,
			Reason:     reason.String,
		}

		if payload.Status == constants.AssignmentStatusAccepted {
			// Принятое предложение всегда оставляет заявку в REPAIRING,
			// минуя таблицу переходов: это следствие, а не пользовательская
			// смена статуса.
			if txErr = s.requestRepo.ChangeStatusInTx(ctx, tx, requestID, constants.RequestStatusRepairing); txErr != nil {
				return txErr
			}
			statusChanged = &events.RequestStatusChangedEvent{
				EventID:   uuid.New(),
				RequestID: requestID,
				RequestNo: request.RequestNo,
				From:      request.Status,
				To:        constants.RequestStatusRepairing,
				ChangedBy: entry.EngineerID,
				Notes:     "предложение принято",
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Назначение разрешено",
		zap.Int("requestId", requestID),
		zap.Int("entryId", resolved.EntryID),
		zap.String("status", payload.Status),
		zap.Int("actorId", actorID),
	)

	s.bus.Publish(ctx, resolved)
	if statusChanged != nil {
		s.bus.Publish(ctx, *statusChanged)
	}
	return nil
}

// ReassignRequest передает заявку другому инженеру: указатель на инженера
// в заявке меняется сразу, не дожидаясь принятия; старые PENDING-предложения
// отменяются; в журнале появляется новая MANUAL-запись от имени actor.
func (s *AssignmentService) ReassignRequest(ctx context.Context, requestID int, payload dto.ReassignRequestDTO) error {
	actorID, err := utils.GetEmployeeIDFromCtx(ctx)
	if err != nil {
		return err
	}

	if _, err := s.employeeRepo.FindEmployee(ctx, payload.EmployeeID); err != nil {
		return err
	}

	var offered events.AssignmentOfferedEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, txErr := s.requestRepo.FindRequestForUpdateInTx(ctx, tx, requestID)
		if txErr != nil {
			return txErr
		}

		cancelled, txErr := s.assignmentRepo.CancelPendingInTx(ctx, tx, requestID)
		if txErr != nil {
			return txErr
		}
		if cancelled > 0 {
			s.logger.Debug("Отменены устаревшие предложения",
				zap.Int("requestId", requestID), zap.Int64("count", cancelled))
		}

		if txErr = s.requestRepo.SetEngineerInTx(ctx, tx, requestID, payload.EmployeeID); txErr != nil {
			return txErr
		}

		entryID, txErr := s.assignmentRepo.CreateAssignmentInTx(ctx, tx, entities.AssignmentLog{
			RequestID:      requestID,
			EngineerID:     payload.EmployeeID,
			OfferedByID:    null.IntFrom(actorID),
			AssignmentType: constants.AssignmentTypeManual,
		})
		if txErr != nil {
			return txErr
		}

		offered = events.AssignmentOfferedEvent{
			EventID:        uuid.New(),
			RequestID:      requestID,
			RequestNo:      request.RequestNo,
			EntryID:        entryID,
			EngineerID:     payload.EmployeeID,
			OfferedByID:    actorID,
			AssignmentType: constants.AssignmentTypeManual,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Заявка переназначена",
		zap.Int("requestId", requestID),
		zap.Int("engineerId", payload.EmployeeID),
		zap.Int("actorId", actorID),
	)

	s.bus.Publish(ctx, offered)
	return nil
}
