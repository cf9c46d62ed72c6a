package domain

// Department as listed by GET /departments. An empty HeadUsername means no
// head is assigned.
type Department struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	HeadUsername string `json:"head_name,omitempty"`
}

// HeadLabel is the head column shown in department tables.
func (d Department) HeadLabel() string {
	if d.HeadUsername == "" {
		return "Unassigned"
	}
	return d.HeadUsername
}

// DepartmentCreate is the body of POST /departments.
type DepartmentCreate struct {
	Name string `json:"name"`
}

// HeadAssignment is the body of PUT /departments/{id}/assign-head.
type HeadAssignment struct {
	Username string `json:"username"`
}
