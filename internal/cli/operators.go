package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/services"
)

var accountHeader = []string{"ID", "USERNAME", "ROLE", "DEPARTMENT", "STATUS"}

func accountRow(account domain.Account) []string {
	return []string{
		strconv.FormatInt(account.ID, 10),
		account.Username,
		account.Role.String(),
		departmentLabel(account.DepartmentID),
		account.Status(),
	}
}

var departmentHeader = []string{"ID", "NAME", "HEAD"}

func departmentRow(department domain.Department) []string {
	return []string{strconv.FormatInt(department.ID, 10), department.Name, department.HeadLabel()}
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

// optionalDepartment maps the --department flag to the wire value; zero
// means no department.
func optionalDepartment(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func (a *App) usersCommand() *Command {
	return &Command{
		Name:    "users",
		Summary: "Manage accounts (admin, hr)",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List accounts",
				Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
					return printList(a.Out, a.Accounts.List(ctx), accountHeader, accountRow)
				}),
			},
			a.userCreateCommand(),
			a.userUpdateCommand(),
			a.userDeleteCommand(),
			a.userCreateHeadCommand(),
		},
	}
}

func (a *App) userCreateCommand() *Command {
	var username, role string
	var department int64
	return &Command{
		Name:    "create",
		Summary: "Create an account",
		Usage:   "evalctl users create --username NAME --role ROLE [--department ID]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flags.StringVarP(&username, "username", "u", "", "username")
			flags.StringVarP(&role, "role", "r", "", "admin, hr, head or user")
			flags.Int64VarP(&department, "department", "d", 0, "department id")
			return flags
		},
		Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
			password, err := a.Prompter.Secret("Password: ")
			if err != nil {
				return err
			}
			result, err := a.Accounts.Create(ctx, domain.AccountCreate{
				Username:     username,
				Password:     password,
				Role:         domain.ParseRole(role),
				DepartmentID: optionalDepartment(department),
			})
			return afterMutation(a, result, err, "Account created.", accountHeader, accountRow)
		}),
	}
}

func (a *App) userUpdateCommand() *Command {
	var username, role string
	var department int64
	var flags *pflag.FlagSet
	return &Command{
		Name:    "update",
		Summary: "Change an account's username, role or department",
		Usage:   "evalctl users update <id> [--username NAME] [--role ROLE] [--department ID]",
		Flags: func() *pflag.FlagSet {
			flags = pflag.NewFlagSet("update", pflag.ContinueOnError)
			flags.StringVarP(&username, "username", "u", "", "username")
			flags.StringVarP(&role, "role", "r", "", "admin, hr, head or user")
			flags.Int64VarP(&department, "department", "d", 0, "department id (0 for none)")
			return flags
		},
		Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "evalctl users update <id> [--username NAME] [--role ROLE] [--department ID]"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := a.findAccount(ctx, id)
			if err != nil {
				return err
			}

			// Unset flags keep the account's current values.
			update := domain.AccountUpdate{
				Username:     current.Username,
				Role:         current.Role,
				DepartmentID: current.DepartmentID,
			}
			if flags.Changed("username") {
				update.Username = username
			}
			if flags.Changed("role") {
				update.Role = domain.ParseRole(role)
			}
			if flags.Changed("department") {
				update.DepartmentID = optionalDepartment(department)
			}
			result, err := a.Accounts.Update(ctx, id, update)
			return afterMutation(a, result, err, "Account updated.", accountHeader, accountRow)
		}),
	}
}

// findAccount reads the account list and returns the account with id.
func (a *App) findAccount(ctx context.Context, id int64) (domain.Account, error) {
	result := a.Accounts.List(ctx)
	if result.State == services.ListFailed {
		return domain.Account{}, &viewError{message: result.Message, err: result.Err}
	}
	for _, account := range result.Items {
		if account.ID == id {
			return account, nil
		}
	}
	return domain.Account{}, fmt.Errorf("no account with id %d", id)
}

func (a *App) userDeleteCommand() *Command {
	return &Command{
		Name:    "delete",
		Summary: "Delete an account",
		Usage:   "evalctl users delete <id>",
		Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "evalctl users delete <id>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			username := "#" + args[0]
			for _, account := range a.Accounts.List(ctx).Items {
				if account.ID == id {
					username = account.Username
				}
			}
			result, err := a.Accounts.Delete(ctx, id, username, a.Prompter)
			return afterMutation(a, result, err, "Account deleted.", accountHeader, accountRow)
		}),
	}
}

func (a *App) userCreateHeadCommand() *Command {
	var departmentName, username string
	return &Command{
		Name:    "create-head",
		Summary: "Create a department together with its head account",
		Usage:   "evalctl users create-head --department-name NAME --username NAME",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("create-head", pflag.ContinueOnError)
			flags.StringVar(&departmentName, "department-name", "", "name of the new department")
			flags.StringVarP(&username, "username", "u", "", "username of the head account")
			return flags
		},
		Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
			password, err := a.Prompter.Secret("Password: ")
			if err != nil {
				return err
			}
			result, err := a.Accounts.CreateWithHead(ctx, domain.HeadAccount{
				DepartmentName: departmentName,
				Username:       username,
				Password:       password,
			})
			return afterMutation(a, result, err, "Department and head account created.", accountHeader, accountRow)
		}),
	}
}

func (a *App) departmentsCommand() *Command {
	return &Command{
		Name:    "departments",
		Summary: "Manage departments (admin, hr)",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List departments",
				Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
					return printList(a.Out, a.Departments.List(ctx), departmentHeader, departmentRow)
				}),
			},
			{
				Name:    "create",
				Summary: "Create a department",
				Usage:   "evalctl departments create <name>",
				Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
					if err := exactArgs(args, 1, "evalctl departments create <name>"); err != nil {
						return err
					}
					result, err := a.Departments.Create(ctx, args[0])
					return afterMutation(a, result, err, "Department created.", departmentHeader, departmentRow)
				}),
			},
			{
				Name:    "assign-head",
				Summary: "Assign a head to a department",
				Usage:   "evalctl departments assign-head <id> <username>",
				Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
					if err := exactArgs(args, 2, "evalctl departments assign-head <id> <username>"); err != nil {
						return err
					}
					id, err := parseID(args[0])
					if err != nil {
						return err
					}
					result, err := a.Departments.AssignHead(ctx, id, args[1])
					return afterMutation(a, result, err, "Head assigned.", departmentHeader, departmentRow)
				}),
			},
			{
				Name:    "remove-head",
				Summary: "Remove a department's head",
				Usage:   "evalctl departments remove-head <id>",
				Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
					if err := exactArgs(args, 1, "evalctl departments remove-head <id>"); err != nil {
						return err
					}
					id, err := parseID(args[0])
					if err != nil {
						return err
					}
					result, err := a.Departments.RemoveHead(ctx, id)
					return afterMutation(a, result, err, "Head removed.", departmentHeader, departmentRow)
				}),
			},
			{
				Name:    "delete",
				Summary: "Delete a department",
				Usage:   "evalctl departments delete <id>",
				Run: a.protected(operatorRoles, func(ctx context.Context, args []string) error {
					if err := exactArgs(args, 1, "evalctl departments delete <id>"); err != nil {
						return err
					}
					id, err := parseID(args[0])
					if err != nil {
						return err
					}
					name := "#" + args[0]
					for _, department := range a.Departments.List(ctx).Items {
						if department.ID == id {
							name = department.Name
						}
					}
					result, err := a.Departments.Delete(ctx, id, name, a.Prompter)
					return afterMutation(a, result, err, "Department deleted.", departmentHeader, departmentRow)
				}),
			},
		},
	}
}

func (a *App) dashboardCommand() *Command {
	return &Command{
		Name:    "dashboard",
		Summary: "Show the system overview (admin)",
		Run: a.protected(adminRoles, func(ctx context.Context, args []string) error {
			stats, err := a.Dashboard.Load(ctx)
			if err != nil {
				return &viewError{message: services.DashboardFailedText, err: err}
			}
			fmt.Fprintf(a.Out, "Users:        %d\nDepartments:  %d\n", stats.Users, stats.Departments)
			return nil
		}),
	}
}

// afterMutation reports a mutation and prints the reloaded collection.
func afterMutation[T any](a *App, result services.ListResult[T], err error, done string, header []string, row func(T) []string) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, done)
	return printList(a.Out, result, header, row)
}
