package models

type Role string

const (
	RoleProvider          Role = "provider"
	RoleOperationsManager Role = "operations_manager"
	RoleCoordination      Role = "coordination"
	RoleAdmin             Role = "admin"
)

func (r Role) Label() string {
	switch r {
	case RoleProvider:
		return "Service provider"
	case RoleOperationsManager:
		return "Operations manager"
	case RoleCoordination:
		return "Coordination centre"
	case RoleAdmin:
		return "Administrator"
	default:
		return string(r)
	}
}

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
