package listeners

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"as-system/internal/events"
	"as-system/internal/repositories"
	"as-system/pkg/constants"
	"as-system/pkg/eventbus"
	"as-system/pkg/sms"
)

// Человекочитаемые названия статусов для текста уведомления.
var statusLabels = map[string]string{
	constants.RequestStatusReceived:           "принята",
	constants.RequestStatusRepairing:          "в ремонте",
	constants.RequestStatusWaitingForPayment:  "ожидает оплаты",
	constants.RequestStatusWaitingForDelivery: "ожидает выдачи",
	constants.RequestStatusCompleted:          "завершена",
}

// NotificationListener переводит события жизненного цикла заявки
// в SMS сотрудникам. Шина может доставить событие повторно, поэтому
// обработанные EventID запоминаются.
type NotificationListener struct {
	employeeRepo repositories.EmployeeRepositoryInterface
	sender       sms.Sender
	logger       *zap.Logger

	seenMu sync.Mutex
	seen   map[uuid.UUID]struct{}
}

func NewNotificationListener(
	employeeRepo repositories.EmployeeRepositoryInterface,
	sender sms.Sender,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		employeeRepo: employeeRepo,
		sender:       sender,
		logger:       logger,
		seen:         make(map[uuid.UUID]struct{}),
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe("request.status.changed", l.handleStatusChanged)
	bus.Subscribe("assignment.offered", l.handleAssignmentOffered)
	bus.Subscribe("assignment.resolved", l.handleAssignmentResolved)
	l.logger.Info("NotificationListener подписан на события заявок")
}

// markSeen возвращает false, если событие уже обрабатывалось.
func (l *NotificationListener) markSeen(id uuid.UUID) bool {
	l.seenMu.Lock()
	defer l.seenMu.Unlock()
	if _, ok := l.seen[id]; ok {
		return false
	}
	l.seen[id] = struct{}{}
	return true
}

func (l *NotificationListener) handleStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestStatusChangedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	if !l.markSeen(e.EventID) {
		l.logger.Debug("Событие уже обработано, пропускаем", zap.String("eventId", e.EventID.String()))
		return nil
	}
	// Инициализация статуса при создании заявки не требует уведомления:
	// о новой заявке инженер узнает из assignment.offered.
	if e.From == "" {
		return nil
	}

	label, ok := statusLabels[e.To]
	if !ok {
		label = e.To
	}
	text := fmt.Sprintf("Заявка %s: %s", e.RequestNo, label)
	return l.notifyEmployee(ctx, e.ChangedBy, text)
}

func (l *NotificationListener) handleAssignmentOffered(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.AssignmentOfferedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	if !l.markSeen(e.EventID) {
		l.logger.Debug("Событие уже обработано, пропускаем", zap.String("eventId", e.EventID.String()))
		return nil
	}

	text := fmt.Sprintf("Вам предложена заявка %s. Подтвердите или отклоните назначение.", e.RequestNo)
	return l.notifyEmployee(ctx, e.EngineerID, text)
}

func (l *NotificationListener) handleAssignmentResolved(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.AssignmentResolvedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	if !l.markSeen(e.EventID) {
		l.logger.Debug("Событие уже обработано, пропускаем", zap.String("eventId", e.EventID.String()))
		return nil
	}

	var text string
	switch e.Status {
	case constants.AssignmentStatusAccepted:
		text = fmt.Sprintf("Инженер принял заявку %s в работу.", e.RequestNo)
	case constants.AssignmentStatusRejected:
		text = fmt.Sprintf("Инженер отклонил заявку %s: %s", e.RequestNo, e.Reason)
	default:
		// CANCELLED/EXPIRED назначаются системой, SMS не шлем.
		return nil
	}
	// Решение принял сам инженер, SMS уходит принявшему заявку сотруднику.
	return l.notifyEmployee(ctx, e.ReceiverID, text)
}

func (l *NotificationListener) notifyEmployee(ctx context.Context, employeeID int, text string) error {
	employee, err := l.employeeRepo.FindEmployee(ctx, employeeID)
	if err != nil {
		l.logger.Warn("Не удалось найти получателя уведомления",
			zap.Int("employeeId", employeeID), zap.Error(err))
		return nil
	}
	if employee.Phone == "" {
		l.logger.Debug("У сотрудника нет телефона, SMS пропущено", zap.Int("employeeId", employeeID))
		return nil
	}
	if err := l.sender.Send(ctx, employee.Phone, text); err != nil {
		l.logger.Error("Ошибка отправки SMS",
			zap.Int("employeeId", employeeID), zap.Error(err))
		return err
	}
	return nil
}
