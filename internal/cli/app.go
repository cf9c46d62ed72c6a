package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/services"
)

// App carries the services the commands drive.
type App struct {
	Guard          *services.Guard
	Auth           *services.AuthService
	Registration   *services.RegistrationService
	Accounts       *services.AccountController
	Departments    *services.DepartmentController
	Questionnaires *services.QuestionnaireController
	Responses      *services.ResponseController
	Dashboard      *services.DashboardService
	Assistant      *services.AssistantService

	// Evaluate runs the respondent form until it is closed.
	Evaluate func(ctx context.Context) error

	Prompter *Prompter
	Out      io.Writer
	Logger   *zap.Logger
}

// AccessDeniedError is returned when the guard refuses a protected command.
// Nothing has been sent by then.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + e.Reason + "\n\nRun 'evalctl login' to sign in with a permitted account."
}

// Root builds the evalctl command tree.
func (a *App) Root() *Command {
	return &Command{
		Name:    "evalctl",
		Summary: "Client for the evaluation-management service",
		Subcommands: []*Command{
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.registerCommand(),
			a.usersCommand(),
			a.departmentsCommand(),
			a.questionnairesCommand(),
			a.responsesCommand(),
			a.dashboardCommand(),
			a.evaluateCommand(),
			a.askCommand(),
		},
	}
}

// protected wraps run with the role check. run never executes when the
// guard denies.
func (a *App) protected(roles []domain.Role, run func(ctx context.Context, args []string) error) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		decision := a.Guard.RequireRole(ctx, roles...)
		if !decision.Authorized {
			return &AccessDeniedError{Reason: decision.Reason}
		}
		return run(ctx, args)
	}
}

var (
	operatorRoles = []domain.Role{domain.RoleAdmin, domain.RoleHR}
	adminRoles    = []domain.Role{domain.RoleAdmin}
	headRoles     = []domain.Role{domain.RoleHead}
)

// printList renders a collection read. A failed read is returned as an
// error carrying the view's failure text.
func printList[T any](w io.Writer, result services.ListResult[T], header []string, row func(T) []string) error {
	switch result.State {
	case services.ListFailed:
		return &viewError{message: result.Message, err: result.Err}
	case services.ListEmpty:
		fmt.Fprintln(w, result.Message)
		return nil
	case services.ListStale:
		return nil
	}

	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, item := range result.Items {
		fmt.Fprintln(tw, strings.Join(row(item), "\t"))
	}
	return tw.Flush()
}

// viewError shows message to the operator and keeps the cause for logs.
type viewError struct {
	message string
	err     error
}

func (e *viewError) Error() string { return e.message }

func (e *viewError) Unwrap() error { return e.err }

// Message returns the text an operator should see for err.
func Message(err error) string {
	var validationErr *domain.ValidationError
	var httpErr *domain.HTTPError
	var viewErr *viewError
	var deniedErr *AccessDeniedError
	if msg, ok := services.IsLoginError(err); ok {
		return msg
	}
	switch {
	case errors.As(err, &deniedErr):
		return deniedErr.Error()
	case errors.As(err, &viewErr):
		return viewErr.message
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, domain.ErrNotConfirmed):
		return "Cancelled."
	case domain.IsAuth(err):
		return "Not authorized. Please login again."
	case domain.IsUnreachable(err):
		return "Cannot connect to server."
	case errors.As(err, &httpErr) && httpErr.Detail != "":
		return httpErr.Detail
	}
	return err.Error()
}

func departmentLabel(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}
