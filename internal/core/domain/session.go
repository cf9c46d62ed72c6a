package domain

import "fmt"

// Session is the authenticated identity for the lifetime of one client
// session. Token is present iff Role is not RoleNone.
type Session struct {
	Token        string
	Role         Role
	DepartmentID *int64
}

// Authenticated reports whether the session carries a credential.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Role != RoleNone
}

// Validate enforces the token/role pairing.
func (s Session) Validate() error {
	switch {
	case s.Token == "" && s.Role != RoleNone:
		return fmt.Errorf("session has role %q but no token", s.Role)
	case s.Token != "" && s.Role == RoleNone:
		return fmt.Errorf("session has a token but no role")
	}
	return nil
}

// HasRole reports whether the session's role is one of roles.
func (s Session) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}

// LoginResponse is the wire format returned by POST /login.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"department_id"`
}
