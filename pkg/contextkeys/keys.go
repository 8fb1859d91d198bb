package contextkeys

type contextKey string

const (
	EmployeeIDKey   contextKey = "EmployeeID"
	EmployeeRoleKey contextKey = "EmployeeRole"
)
