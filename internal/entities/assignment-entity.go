package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// AssignmentLog - запись журнала назначений: кому предложена заявка, кем,
// когда и чем предложение закончилось. Журнал append-only: после создания
// меняются только status, status_changed_at и rejection_reason, и только
// при разрешении PENDING-записи.
type AssignmentLog struct {
	ID              int         `json:"id"`
	RequestID       int         `json:"request_id"`
	EngineerID      int         `json:"engineer_id"`
	OfferedByID     null.Int    `json:"offered_by_id"`
	AssignmentType  string      `json:"assignment_type"`
	Status          string      `json:"status"`
	AssignedAt      time.Time   `json:"assigned_at"`
	StatusChangedAt null.Time   `json:"status_changed_at"`
	RejectionReason null.String `json:"rejection_reason"`
}
