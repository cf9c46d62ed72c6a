package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/services"
)

var questionnaireHeader = []string{"ID", "SERVICE", "QUESTIONS", "STATUS"}

func questionnaireRow(q domain.Questionnaire) []string {
	return []string{strconv.FormatInt(q.ID, 10), q.Label(), strconv.Itoa(len(q.Content.Prompts)), q.Status()}
}

func (a *App) questionnairesCommand() *Command {
	return &Command{
		Name:    "questionnaires",
		Summary: "Manage your department's questionnaires (head)",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List questionnaires",
				Run: a.protected(headRoles, func(ctx context.Context, args []string) error {
					return printList(a.Out, a.Questionnaires.List(ctx), questionnaireHeader, questionnaireRow)
				}),
			},
			a.questionnaireCreateCommand(),
			{
				Name:    "activate",
				Summary: "Make a questionnaire the active one",
				Usage:   "evalctl questionnaires activate <id>",
				Run: a.protected(headRoles, func(ctx context.Context, args []string) error {
					if err := exactArgs(args, 1, "evalctl questionnaires activate <id>"); err != nil {
						return err
					}
					id, err := parseID(args[0])
					if err != nil {
						return err
					}
					result, err := a.Questionnaires.Activate(ctx, id)
					if err != nil {
						// The list was re-read regardless; show where things stand.
						_ = printList(a.Out, result, questionnaireHeader, questionnaireRow)
						return err
					}
					return afterMutation(a, result, nil, "Questionnaire activated.", questionnaireHeader, questionnaireRow)
				}),
			},
			{
				Name:    "generate",
				Summary: "Suggest questions for a service",
				Usage:   "evalctl questionnaires generate <service name>",
				Run: a.protected(headRoles, func(ctx context.Context, args []string) error {
					prompts, err := a.Questionnaires.GeneratePrompts(ctx, strings.Join(args, " "))
					if err != nil {
						return err
					}
					for i, prompt := range prompts {
						fmt.Fprintf(a.Out, "%d. %s\n", i+1, prompt)
					}
					return nil
				}),
			},
		},
	}
}

func (a *App) questionnaireCreateCommand() *Command {
	var service string
	var questions []string
	var generate bool
	return &Command{
		Name:    "create",
		Summary: "Create a questionnaire",
		Usage:   "evalctl questionnaires create --service NAME (--question TEXT ... | --generate)",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flags.StringVarP(&service, "service", "s", "", "service the questionnaire evaluates")
			flags.StringArrayVarP(&questions, "question", "q", nil, "question text (repeatable)")
			flags.BoolVar(&generate, "generate", false, "let the assistant suggest the questions")
			return flags
		},
		Run: a.protected(headRoles, func(ctx context.Context, args []string) error {
			prompts := questions
			if generate {
				generated, err := a.Questionnaires.GeneratePrompts(ctx, service)
				if err != nil {
					return err
				}
				prompts = generated
			}
			result, err := a.Questionnaires.Create(ctx, service, prompts)
			return afterMutation(a, result, err, "Questionnaire created.", questionnaireHeader, questionnaireRow)
		}),
	}
}

var responseHeader = []string{"ID", "DATE", "TIME", "RESPONDENT", "CATEGORY", "RATINGS", "FEEDBACK"}

func responseRow(r domain.EvaluationResponse) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Date,
		r.Time,
		r.Respondent(),
		r.ClientCategory,
		strings.Join(r.Stars(), " "),
		r.FeedbackType + ": " + r.FeedbackMessage,
	}
}

func (a *App) responsesCommand() *Command {
	return &Command{
		Name:    "responses",
		Summary: "Review submitted evaluations (head)",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List responses with the average rating",
				Run: a.protected(headRoles, func(ctx context.Context, args []string) error {
					result := a.Responses.List(ctx)
					if err := printList(a.Out, result, responseHeader, responseRow); err != nil {
						return err
					}
					if result.State == services.ListLoaded {
						summary := services.Summarize(result.Items)
						fmt.Fprintf(a.Out, "\n%d responses, average rating %.2f\n", summary.Responses, summary.AverageRating)
					}
					return nil
				}),
			},
		},
	}
}
