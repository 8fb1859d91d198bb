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
	"as-system/pkg/types"
	"as-system/pkg/utils"
)

type RequestServiceInterface interface {
	CreateRequest(ctx context.Context, payload dto.CreateRequestDTO) (*dto.CreateRequestResponseDTO, error)
	GetRequests(ctx context.Context, filter types.Filter) ([]dto.RequestDTO, uint64, error)
	FindRequest(ctx context.Context, id int) (*dto.RequestDetailDTO, error)
	UpdateRequest(ctx context.Context, id int, payload dto.UpdateRequestDTO) error
	ChangeRequestStatus(ctx context.Context, id int, payload dto.ChangeRequestStatusDTO) error
	DeleteRequest(ctx context.Context, id int) error
	DeleteRequests(ctx context.Context, ids []int) error
}

type RequestService struct {
	txManager      repositories.TxManagerInterface
	requestRepo    repositories.RequestRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	employeeRepo   repositories.EmployeeRepositoryInterface
	customerRepo   repositories.CustomerRepositoryInterface
	productRepo    repositories.CustomerProductRepositoryInterface
	bus            *eventbus.Bus
	logger         *zap.Logger
}

func NewRequestService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	customerRepo repositories.CustomerRepositoryInterface,
	productRepo repositories.CustomerProductRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) RequestServiceInterface {
	return &RequestService{
		txManager:      txManager,
		requestRepo:    requestRepo,
		assignmentRepo: assignmentRepo,
		employeeRepo:   employeeRepo,
		customerRepo:   customerRepo,
		productRepo:    productRepo,
		bus:            bus,
		logger:         logger,
	}
}

// scopeForViewer переводит роль в ограничение выборки. Ровно одна проверка
// роли на границе сервиса; неизвестная роль отклоняется до запроса к БД.
func scopeForViewer(viewerID int, role string) (repositories.RequestScope, error) {
	switch role {
	case constants.RoleStaff:
		return repositories.RequestScope{ReceiverID: viewerID}, nil
	case constants.RoleEngineer:
		return repositories.RequestScope{EngineerID: viewerID}, nil
	case constants.RoleAdmin:
		return repositories.RequestScope{}, nil
	default:
		return repositories.RequestScope{}, apperrors.NewAccessDeniedError("неизвестная роль: %s", role)
	}
}

// canView проверяет правило видимости на отдельной заявке.
func canView(req *dto.RequestDTO, viewerID int, role string) (bool, error) {
	switch role {
	case constants.RoleAdmin:
		return true, nil
	case constants.RoleStaff:
		return req.Receiver.ID == viewerID, nil
	case constants.RoleEngineer:
		return req.Engineer != nil && req.Engineer.ID == viewerID, nil
	default:
		return false, apperrors.NewAccessDeniedError("неизвестная роль: %s", role)
	}
}

// CreateRequest создает заявку в статусе RECEIVED и сразу диспетчеризует ее:
// первая PENDING-запись журнала назначений появляется в той же транзакции.
func (s *RequestService) CreateRequest(ctx context.Context, payload dto.CreateRequestDTO) (*dto.CreateRequestResponseDTO, error) {
	receiverID, err := utils.GetEmployeeIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	// Fail-fast проверки связанных сущностей до транзакции.
	if _, err := s.employeeRepo.FindEmployee(ctx, payload.EngineerID); err != nil {
		return nil, err
	}
	if _, err := s.customerRepo.FindCustomer(ctx, payload.CustomerID); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindCustomerProduct(ctx, payload.CustomerProductID)
	if err != nil {
		return nil, err
	}
	if product.CustomerID != payload.CustomerID {
		return nil, apperrors.NewBadRequestError("изделие %d не принадлежит клиенту %d", payload.CustomerProductID, payload.CustomerID)
	}

	var newID int
	var requestNo string
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var txErr error
		newID, requestNo, txErr = s.requestRepo.CreateRequestInTx(ctx, tx, receiverID, payload)
		if txErr != nil {
			return txErr
		}

		_, txErr = s.assignmentRepo.CreateAssignmentInTx(ctx, tx, entities.AssignmentLog{
			RequestID:      newID,
			EngineerID:     payload.EngineerID,
			OfferedByID:    null.IntFrom(receiverID),
			AssignmentType: constants.AssignmentTypeManual,
		})
		return txErr
	})
	if err != nil {
		s.logger.Error("Ошибка создания заявки", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Заявка создана",
		zap.Int("requestId", newID),
		zap.String("requestNo", requestNo),
		zap.Int("engineerId", payload.EngineerID),
	)

	s.bus.Publish(ctx, events.RequestStatusChangedEvent{
		EventID:   uuid.New(),
		RequestID: newID,
		RequestNo: requestNo,
		From:      "",
		To:        constants.RequestStatusReceived,
		ChangedBy: receiverID,
	})
	s.bus.Publish(ctx, events.AssignmentOfferedEvent{
		EventID:        uuid.New(),
		RequestID:      newID,
		RequestNo:      requestNo,
		EngineerID:     payload.EngineerID,
		OfferedByID:    receiverID,
		AssignmentType: constants.AssignmentTypeManual,
	})

	return &dto.CreateRequestResponseDTO{RequestID: newID, RequestNo: requestNo}, nil
}

func (s *RequestService) GetRequests(ctx context.Context, filter types.Filter) ([]dto.RequestDTO, uint64, error) {
	viewerID, err := utils.GetEmployeeIDFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	role, err := utils.GetEmployeeRoleFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}

	scope, err := scopeForViewer(viewerID, role)
	if err != nil {
		return nil, 0, err
	}

	return s.requestRepo.GetRequests(ctx, filter, scope)
}

func (s *RequestService) FindRequest(ctx context.Context, id int) (*dto.RequestDetailDTO, error) {
	viewerID, err := utils.GetEmployeeIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	role, err := utils.GetEmployeeRoleFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := canView(req, viewerID, role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewAccessDeniedError("нет доступа к заявке %d", id)
	}

	assignments, err := s.assignmentRepo.GetAssignmentsByRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	// Заявка без единой записи в журнале - поврежденное состояние,
	// о нем сообщаем громко, а не прячем.
	if len(assignments) == 0 {
		s.logger.Error("Заявка без журнала назначений", zap.Int("requestId", id))
		return nil, apperrors.NewNotFoundError("журнал назначений заявки %d пуст", id)
	}

	return &dto.RequestDetailDTO{RequestDTO: *req, Assignments: assignments}, nil
}

// UpdateRequest - частичное обновление полей заявки; статус здесь не меняется.
// Смена инженера через PUT проходит тем же путем, что и переназначение:
// старые PENDING-предложения гасятся, появляется новая MANUAL-запись журнала.
func (s *RequestService) UpdateRequest(ctx context.Context, id int, payload dto.UpdateRequestDTO) error {
	actorID, err := utils.GetEmployeeIDFromCtx(ctx)
	if err != nil {
		return err
	}

	if payload.EngineerID != nil {
		if _, err := s.employeeRepo.FindEmployee(ctx, *payload.EngineerID); err != nil {
			return err
		}
	}
	if payload.CustomerID != nil {
		if _, err := s.customerRepo.FindCustomer(ctx, *payload.CustomerID); err != nil {
			return err
		}
	}
	if payload.CustomerProductID != nil {
		if _, err := s.productRepo.FindCustomerProduct(ctx, *payload.CustomerProductID); err != nil {
			return err
		}
	}

	var offered *events.AssignmentOfferedEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, txErr := s.requestRepo.FindRequestForUpdateInTx(ctx, tx, id)
		if txErr != nil {
			return txErr
		}

		if txErr = s.requestRepo.UpdateRequestInTx(ctx, tx, id, payload); txErr != nil {
			return txErr
		}

		if payload.EngineerID != nil && *payload.EngineerID != current.EngineerID {
			if _, txErr = s.assignmentRepo.CancelPendingInTx(ctx, tx, id); txErr != nil {
				return txErr
			}
			entryID, txErr := s.assignmentRepo.CreateAssignmentInTx(ctx, tx, entities.AssignmentLog{
				RequestID:      id,
				EngineerID:     *payload.EngineerID,
				OfferedByID:    null.IntFrom(actorID),
				AssignmentType: constants.AssignmentTypeManual,
			})
			if txErr != nil {
				return txErr
			}
			offered = &events.AssignmentOfferedEvent{
				EventID:        uuid.New(),
				RequestID:      id,
				RequestNo:      current.RequestNo,
				EntryID:        entryID,
				EngineerID:     *payload.EngineerID,
				OfferedByID:    actorID,
				AssignmentType: constants.AssignmentTypeManual,
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if offered != nil {
		s.bus.Publish(ctx, *offered)
	}
	return nil
}

// ChangeRequestStatus меняет статус заявки с проверкой по таблице переходов.
func (s *RequestService) ChangeRequestStatus(ctx context.Context, id int, payload dto.ChangeRequestStatusDTO) error {
	actorID, err := utils.GetEmployeeIDFromCtx(ctx)
	if err != nil {
		return err
	}

	var from string
	var requestNo string
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, txErr := s.requestRepo.FindRequestForUpdateInTx(ctx, tx, id)
		if txErr != nil {
			return txErr
		}
		from = current.Status
		requestNo = current.RequestNo

		if !constants.CanTransitRequest(current.Status, payload.Status) {
			return apperrors.NewConflictError("переход статуса %s -> %s недопустим", current.Status, payload.Status)
		}
		return s.requestRepo.ChangeStatusInTx(ctx, tx, id, payload.Status)
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.RequestStatusChangedEvent{
		EventID:   uuid.New(),
		RequestID: id,
		RequestNo: requestNo,
		From:      from,
		To:        payload.Status,
		ChangedBy: actorID,
		Notes:     payload.Notes,
	})
	return nil
}

func (s *RequestService) DeleteRequest(ctx context.Context, id int) error {
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.requestRepo.DeleteRequestInTx(ctx, tx, id)
	})
}

// DeleteRequests удаляет пачку заявок в одной транзакции:
// либо удаляются все, либо ни одна.
func (s *RequestService) DeleteRequests(ctx context.Context, ids []int) error {
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		for _, id := range ids {
			if err := s.requestRepo.DeleteRequestInTx(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}
