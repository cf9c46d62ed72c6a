package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

func (a *App) loginCommand() *Command {
	var username string
	return &Command{
		Name:    "login",
		Summary: "Sign in and store the session",
		Usage:   "evalctl login [--username NAME]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
			flags.StringVarP(&username, "username", "u", "", "account username (prompted when empty)")
			return flags
		},
		Run: func(ctx context.Context, args []string) error {
			if username == "" {
				line, err := a.Prompter.Line("Username: ")
				if err != nil {
					return err
				}
				username = line
			}
			password, err := a.Prompter.Secret("Password: ")
			if err != nil {
				return err
			}

			session, err := a.Auth.Login(ctx, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Logged in as %s (%s).\n", strings.TrimSpace(username), session.Role)
			return nil
		},
	}
}

func (a *App) logoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Clear the stored session",
		Run: func(ctx context.Context, args []string) error {
			if err := a.Auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "Logged out.")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show the role of the current session",
		Run: func(ctx context.Context, args []string) error {
			decision := a.Guard.RequireRole(ctx)
			if !decision.Authorized {
				fmt.Fprintf(a.Out, "Not logged in (%s).\n", decision.Reason)
				return nil
			}
			fmt.Fprintf(a.Out, "Role: %s\nDepartment: %s\n", decision.Session.Role, departmentLabel(decision.Session.DepartmentID))
			return nil
		},
	}
}

func (a *App) registerCommand() *Command {
	var username string
	return &Command{
		Name:    "register",
		Summary: "Create an account",
		Usage:   "evalctl register --username NAME",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("register", pflag.ContinueOnError)
			flags.StringVarP(&username, "username", "u", "", "username of the new account")
			return flags
		},
		Run: func(ctx context.Context, args []string) error {
			password, err := a.Prompter.Secret("Password: ")
			if err != nil {
				return err
			}
			message, err := a.Registration.Register(ctx, username, password)
			if err != nil {
				return &viewError{message: message, err: err}
			}
			fmt.Fprintln(a.Out, message)
			return nil
		},
	}
}

func (a *App) askCommand() *Command {
	return &Command{
		Name:    "ask",
		Summary: "Ask the service assistant a question",
		Usage:   "evalctl ask <message>",
		Run: func(ctx context.Context, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return fmt.Errorf("a message is required\n\nusage: evalctl ask <message>")
			}
			reply, err := a.Assistant.Ask(ctx, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.Out, reply)
			return nil
		},
	}
}

func (a *App) evaluateCommand() *Command {
	return &Command{
		Name:    "evaluate",
		Summary: "Fill in and submit the active evaluation",
		Run: func(ctx context.Context, args []string) error {
			if a.Evaluate == nil {
				return fmt.Errorf("the evaluation form needs an interactive terminal")
			}
			return a.Evaluate(ctx)
		},
	}
}
