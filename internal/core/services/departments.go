package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

const (
	DepartmentsEmptyText  = "No departments yet."
	DepartmentsFailedText = "Failed to load departments."
)

// DepartmentController manages departments and their heads. Head
// assignment and removal are independent: assigning over an existing head
// replaces it.
type DepartmentController struct {
	departments *Collection[domain.Department]
	audit       *Auditor
}

func NewDepartmentController(transport ports.Transport, audit *Auditor, logger *zap.Logger) *DepartmentController {
	return &DepartmentController{
		departments: NewCollection[domain.Department](transport, "/departments", DepartmentsEmptyText, DepartmentsFailedText, logger),
		audit:       audit,
	}
}

func (c *DepartmentController) List(ctx context.Context) ListResult[domain.Department] {
	return c.departments.List(ctx)
}

func (c *DepartmentController) Create(ctx context.Context, name string) (ListResult[domain.Department], error) {
	name = strings.TrimSpace(name)
	if err := required("name", name, "Department name is required"); err != nil {
		return ListResult[domain.Department]{}, err
	}

	result, err := c.departments.Mutate(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   "/departments",
		Body:   domain.DepartmentCreate{Name: name},
	})
	if err != nil {
		return result, fmt.Errorf("creating department %s: %w", name, err)
	}
	c.audit.Record(ctx, "create", "department", 0, name)
	return result, nil
}

func (c *DepartmentController) AssignHead(ctx context.Context, id int64, username string) (ListResult[domain.Department], error) {
	username = strings.TrimSpace(username)
	if err := required("username", username, "Head username is required"); err != nil {
		return ListResult[domain.Department]{}, err
	}

	result, err := c.departments.Mutate(ctx, ports.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/departments/%d/assign-head", id),
		Route:  "/departments/{id}/assign-head",
		Body:   domain.HeadAssignment{Username: username},
	})
	if err != nil {
		return result, fmt.Errorf("assigning head of department %d: %w", id, err)
	}
	c.audit.Record(ctx, "assign_head", "department", id, username)
	return result, nil
}

func (c *DepartmentController) RemoveHead(ctx context.Context, id int64) (ListResult[domain.Department], error) {
	result, err := c.departments.Mutate(ctx, ports.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/departments/%d/remove-head", id),
		Route:  "/departments/{id}/remove-head",
	})
	if err != nil {
		return result, fmt.Errorf("removing head of department %d: %w", id, err)
	}
	c.audit.Record(ctx, "remove_head", "department", id, "")
	return result, nil
}

// Delete removes a department after the operator confirms.
func (c *DepartmentController) Delete(ctx context.Context, id int64, name string, confirmer ports.Confirmer) (ListResult[domain.Department], error) {
	if err := confirm(ctx, confirmer, fmt.Sprintf("Delete department %q permanently?", name)); err != nil {
		return ListResult[domain.Department]{}, err
	}

	result, err := c.departments.Mutate(ctx, ports.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/departments/%d", id),
		Route:  "/departments/{id}",
	})
	if err != nil {
		return result, fmt.Errorf("deleting department %d: %w", id, err)
	}
	c.audit.Record(ctx, "delete", "department", id, name)
	return result, nil
}
