package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalAssignmentStatus(t *testing.T) {
	assert.False(t, IsTerminalAssignmentStatus(AssignmentStatusPending))

	for _, status := range TerminalAssignmentStatuses {
		assert.True(t, IsTerminalAssignmentStatus(status), status)
	}
	assert.False(t, IsTerminalAssignmentStatus("UNKNOWN"))
	assert.False(t, IsTerminalAssignmentStatus(""))
}

func TestIsAssignmentStatus(t *testing.T) {
	for _, status := range []string{
		AssignmentStatusPending, AssignmentStatusAccepted, AssignmentStatusRejected,
		AssignmentStatusCancelled, AssignmentStatusExpired,
	} {
		assert.True(t, IsAssignmentStatus(status), status)
	}
	assert.False(t, IsAssignmentStatus("pending"))
}

// Порядок приоритетов определяет сортировку списков: ожидающие предложения
// всегда наверху, просроченные в самом низу.
func TestAssignmentStatusPriorityOrder(t *testing.T) {
	assert.Greater(t, AssignmentStatusPriority[AssignmentStatusPending], AssignmentStatusPriority[AssignmentStatusAccepted])
	assert.Greater(t, AssignmentStatusPriority[AssignmentStatusAccepted], AssignmentStatusPriority[AssignmentStatusCancelled])
	assert.Greater(t, AssignmentStatusPriority[AssignmentStatusCancelled], AssignmentStatusPriority[AssignmentStatusRejected])
	assert.Greater(t, AssignmentStatusPriority[AssignmentStatusRejected], AssignmentStatusPriority[AssignmentStatusExpired])
}

func TestIsKnownRole(t *testing.T) {
	assert.True(t, IsKnownRole(RoleStaff))
	assert.True(t, IsKnownRole(RoleEngineer))
	assert.True(t, IsKnownRole(RoleAdmin))
	assert.False(t, IsKnownRole("MANAGER"))
	assert.False(t, IsKnownRole(""))
}
