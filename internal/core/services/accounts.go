package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

const (
	AccountsEmptyText  = "No accounts found."
	AccountsFailedText = "Failed to load accounts."

	// MsgDepartmentExists replaces the server's "Department exists" detail.
	MsgDepartmentExists = "Department already exists. Please use a different name."
)

// AccountController manages operator and respondent accounts.
type AccountController struct {
	accounts *Collection[domain.Account]
	audit    *Auditor
}

func NewAccountController(transport ports.Transport, audit *Auditor, logger *zap.Logger) *AccountController {
	return &AccountController{
		accounts: NewCollection[domain.Account](transport, "/users", AccountsEmptyText, AccountsFailedText, logger),
		audit:    audit,
	}
}

func (c *AccountController) List(ctx context.Context) ListResult[domain.Account] {
	return c.accounts.List(ctx)
}

// Create adds an account. The password gate runs before any request.
func (c *AccountController) Create(ctx context.Context, account domain.AccountCreate) (ListResult[domain.Account], error) {
	account.Username = strings.TrimSpace(account.Username)
	if err := required("username", account.Username, "Username is required."); err != nil {
		return ListResult[domain.Account]{}, err
	}
	if account.Role == domain.RoleNone {
		return ListResult[domain.Account]{}, &domain.ValidationError{Field: "role", Message: "Please select a role."}
	}
	if err := domain.CheckPassword(account.Password); err != nil {
		return ListResult[domain.Account]{}, err
	}

	result, err := c.accounts.Mutate(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   "/users",
		Body:   account,
	})
	if err != nil {
		return result, fmt.Errorf("creating account %s: %w", account.Username, err)
	}
	c.audit.Record(ctx, "create", "user", 0, account.Username)
	return result, nil
}

// Update changes an account's username, role and department. Role and
// department are independent: a nil department clears it whatever the
// role.
func (c *AccountController) Update(ctx context.Context, id int64, update domain.AccountUpdate) (ListResult[domain.Account], error) {
	update.Username = strings.TrimSpace(update.Username)
	if err := required("username", update.Username, "Username required"); err != nil {
		return ListResult[domain.Account]{}, err
	}
	if update.Role == domain.RoleNone {
		return ListResult[domain.Account]{}, &domain.ValidationError{Field: "role", Message: "Please select a role."}
	}

	result, err := c.accounts.Mutate(ctx, ports.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/users/%d", id),
		Route:  "/users/{id}",
		Body:   update,
	})
	if err != nil {
		return result, fmt.Errorf("updating account %d: %w", id, err)
	}
	c.audit.Record(ctx, "update", "user", id, update.Username)
	return result, nil
}

// Delete removes an account after the operator confirms.
func (c *AccountController) Delete(ctx context.Context, id int64, username string, confirmer ports.Confirmer) (ListResult[domain.Account], error) {
	if err := confirm(ctx, confirmer, fmt.Sprintf("Permanently delete account %q?", username)); err != nil {
		return ListResult[domain.Account]{}, err
	}

	result, err := c.accounts.Mutate(ctx, ports.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/users/%d", id),
		Route:  "/users/{id}",
	})
	if err != nil {
		return result, fmt.Errorf("deleting account %d: %w", id, err)
	}
	c.audit.Record(ctx, "delete", "user", id, username)
	return result, nil
}

// CreateWithHead creates a department together with its head account and
// reloads the accounts.
func (c *AccountController) CreateWithHead(ctx context.Context, head domain.HeadAccount) (ListResult[domain.Account], error) {
	head.DepartmentName = strings.TrimSpace(head.DepartmentName)
	head.Username = strings.TrimSpace(head.Username)
	if isBlank(head.DepartmentName) || isBlank(head.Username) || head.Password == "" {
		return ListResult[domain.Account]{}, &domain.ValidationError{Field: "department", Message: "Please fill all fields"}
	}
	if err := domain.CheckPassword(head.Password); err != nil {
		return ListResult[domain.Account]{}, err
	}
	head.Role = domain.RoleHead

	result, err := c.accounts.Mutate(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   "/departments/create-with-user",
		Body:   head,
	})
	if err != nil {
		var httpErr *domain.HTTPError
		if errors.As(err, &httpErr) && httpErr.Detail == "Department exists" {
			return result, &domain.ValidationError{Field: "department_name", Message: MsgDepartmentExists}
		}
		return result, fmt.Errorf("creating department %s: %w", head.DepartmentName, err)
	}
	c.audit.Record(ctx, "create", "department", 0, head.DepartmentName)
	c.audit.Record(ctx, "create", "user", 0, head.Username)
	return result, nil
}
