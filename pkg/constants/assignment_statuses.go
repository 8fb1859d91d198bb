package constants

// --- СТАТУСЫ НАЗНАЧЕНИЙ ---
const (
	AssignmentStatusPending   = "PENDING"
	AssignmentStatusAccepted  = "ACCEPTED"
	AssignmentStatusRejected  = "REJECTED"
	AssignmentStatusCancelled = "CANCELLED"
	AssignmentStatusExpired   = "EXPIRED"
)

// Терминальные статусы: выхода из них нет.
var TerminalAssignmentStatuses = []string{
	AssignmentStatusAccepted,
	AssignmentStatusRejected,
	AssignmentStatusCancelled,
	AssignmentStatusExpired,
}

func IsTerminalAssignmentStatus(code string) bool {
	for _, s := range TerminalAssignmentStatuses {
		if s == code {
			return true
		}
	}
	return false
}

func IsAssignmentStatus(code string) bool {
	if code == AssignmentStatusPending {
		return true
	}
	return IsTerminalAssignmentStatus(code)
}

// --- ТИПЫ НАЗНАЧЕНИЙ ---
const (
	AssignmentTypeAuto   = "AUTO"
	AssignmentTypeManual = "MANUAL"
)

// AssignmentStatusPriority задает порядок "сначала самое актуальное":
// PENDING выше всех, дальше по убыванию значимости.
// Используется единообразно во всех списочных запросах.
var AssignmentStatusPriority = map[string]int{
	AssignmentStatusPending:   5,
	AssignmentStatusAccepted:  4,
	AssignmentStatusCancelled: 3,
	AssignmentStatusRejected:  2,
	AssignmentStatusExpired:   1,
}
