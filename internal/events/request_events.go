package events

import (
	"github.com/google/uuid"
)

// События жизненного цикла заявки. Публикуются после коммита транзакции;
// подписчики обязаны быть идемпотентными к повторной доставке.

// RequestStatusChangedEvent - статус заявки изменился.
// Для только что созданной заявки From пустой (инициализация статуса).
type RequestStatusChangedEvent struct {
	EventID   uuid.UUID
	RequestID int
	RequestNo string
	From      string
	To        string
	ChangedBy int
	Notes     string
}

func (e RequestStatusChangedEvent) Name() string {
	return "request.status.changed"
}

// AssignmentOfferedEvent - инженеру предложена заявка (диспетчеризация
// при создании или ручное переназначение).
type AssignmentOfferedEvent struct {
	EventID        uuid.UUID
	RequestID      int
	RequestNo      string
	EntryID        int
	EngineerID     int
	OfferedByID    int
	AssignmentType string
}

func (e AssignmentOfferedEvent) Name() string {
	return "assignment.offered"
}

// AssignmentResolvedEvent - PENDING-запись журнала получила терминальный статус.
type AssignmentResolvedEvent struct {
	EventID    uuid.UUID
	RequestID  int
	RequestNo  string
	EntryID    int
	EngineerID int
	ReceiverID int
	Status     string
	Reason     string
}

func (e AssignmentResolvedEvent) Name() string {
	return "assignment.resolved"
}
