package models

// Principal is the authenticated caller, passed explicitly from the auth
// middleware down to the services.
type Principal struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"username"`
	Role  Role   `json:"role"`
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
