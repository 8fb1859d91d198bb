package dto

type ResolveAssignmentDTO struct {
	Status string  `json:"status" validate:"required,assignment_status"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,min=2,max=500"`
}

type ReassignRequestDTO struct {
	EmployeeID int `json:"employeeId" validate:"required,gt=0"`
}

type AssignmentLogDTO struct {
	ID              int               `json:"id"`
	RequestID       int               `json:"request_id"`
	Engineer        ShortEmployeeDTO  `json:"engineer"`
	OfferedBy       *ShortEmployeeDTO `json:"offered_by,omitempty"`
	AssignmentType  string            `json:"assignment_type"`
	Status          string            `json:"status"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	AssignedAt      string            `json:"assigned_at"`
	StatusChangedAt *string           `json:"status_changed_at,omitempty"`
}
