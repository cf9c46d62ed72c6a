package domain

import "encoding/json"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleHR    Role = "hr"
	RoleHead  Role = "head"
	RoleUser  Role = "user"
	RoleNone  Role = ""
)

// Roles lists every role an account can hold, in the order the operator
// views present them.
var Roles = []Role{RoleAdmin, RoleHR, RoleHead, RoleUser}

// ParseRole maps a wire value onto a known role. Unknown values map to
// RoleNone.
func ParseRole(value string) Role {
	for _, role := range Roles {
		if string(role) == value {
			return role
		}
	}
	return RoleNone
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// Account is an operator or respondent account as listed by GET /users.
// Role and DepartmentID are independent; either may change without the
// other.
type Account struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	DepartmentID *int64 `json:"department_id"`
	Active       bool   `json:"-"`
}

// UnmarshalJSON treats a missing is_active flag as active, matching how
// the server reports accounts that were never disabled.
func (a *Account) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID           int64  `json:"id"`
		Username     string `json:"username"`
		Role         string `json:"role"`
		DepartmentID *int64 `json:"department_id"`
		IsActive     *bool  `json:"is_active"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	a.ID = wire.ID
	a.Username = wire.Username
	a.Role = ParseRole(wire.Role)
	a.DepartmentID = wire.DepartmentID
	a.Active = wire.IsActive == nil || *wire.IsActive
	return nil
}

// Status is the account state label shown in account tables.
func (a Account) Status() string {
	if a.Active {
		return "Active"
	}
	return "Disabled"
}

// AccountUpdate is the body of PUT /users/{id}.
type AccountUpdate struct {
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	DepartmentID *int64 `json:"department_id"`
}

// Credentials is the body of POST /login and POST /register.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountCreate is the body of POST /users.
type AccountCreate struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Role         Role   `json:"role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

// HeadAccount is the body of POST /departments/create-with-user.
type HeadAccount struct {
	DepartmentName string `json:"department_name"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Role           Role   `json:"role,omitempty"`
}
