package constants

// --- РОЛИ СОТРУДНИКОВ ---
// Закрытый набор: любое другое значение роли отклоняется до выполнения запроса.
const (
	RoleStaff    = "STAFF"
	RoleEngineer = "ENGINEER"
	RoleAdmin    = "ADMIN"
)

func IsKnownRole(role string) bool {
	switch role {
	case RoleStaff, RoleEngineer, RoleAdmin:
		return true
	}
	return false
}
