package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

const (
	QuestionnairesEmptyText  = "No questionnaires available"
	QuestionnairesFailedText = "Failed to load questionnaires."

	// GeneratedPromptCount is how many prompts GeneratePrompts asks for.
	GeneratedPromptCount = 5
)

// QuestionnaireController manages a head's questionnaires. The server is
// the only authority on which questionnaire is active.
type QuestionnaireController struct {
	questionnaires *Collection[domain.Questionnaire]
	transport      ports.Transport
	audit          *Auditor
	logger         *zap.Logger
}

func NewQuestionnaireController(transport ports.Transport, audit *Auditor, logger *zap.Logger) *QuestionnaireController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionnaireController{
		questionnaires: NewCollection[domain.Questionnaire](transport, "/questionnaires", QuestionnairesEmptyText, QuestionnairesFailedText, logger),
		transport:      transport,
		audit:          audit,
		logger:         logger,
	}
}

func (c *QuestionnaireController) List(ctx context.Context) ListResult[domain.Questionnaire] {
	return c.questionnaires.List(ctx)
}

// Create stores a new questionnaire. Every prompt must be filled in.
func (c *QuestionnaireController) Create(ctx context.Context, serviceName string, prompts []string) (ListResult[domain.Questionnaire], error) {
	content := domain.QuestionnaireContent{ServiceName: strings.TrimSpace(serviceName)}
	if err := required("service", content.ServiceName, "Service name is required."); err != nil {
		return ListResult[domain.Questionnaire]{}, err
	}
	if len(prompts) == 0 {
		return ListResult[domain.Questionnaire]{}, &domain.ValidationError{Field: "questions", Message: "Please complete all questions."}
	}
	for _, prompt := range prompts {
		if isBlank(prompt) {
			return ListResult[domain.Questionnaire]{}, &domain.ValidationError{Field: "questions", Message: "Please complete all questions."}
		}
		content.Prompts = append(content.Prompts, strings.TrimSpace(prompt))
	}

	encoded, err := content.Encode()
	if err != nil {
		return ListResult[domain.Questionnaire]{}, fmt.Errorf("encoding questionnaire: %w", err)
	}

	result, err := c.questionnaires.Mutate(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   "/questionnaires",
		Body:   domain.QuestionnaireCreate{Content: encoded},
	})
	if err != nil {
		return result, fmt.Errorf("saving questionnaire: %w", err)
	}
	c.audit.Record(ctx, "create", "questionnaire", 0, content.ServiceName)
	return result, nil
}

// Activate makes id the active questionnaire and always re-reads the list,
// even when activation failed, so the previously active entry is seen as
// the server reports it.
func (c *QuestionnaireController) Activate(ctx context.Context, id int64) (ListResult[domain.Questionnaire], error) {
	err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/questionnaires/%d/activate", id),
		Route:  "/questionnaires/{id}/activate",
	}, nil)

	result := c.questionnaires.List(ctx)
	if err != nil {
		return result, fmt.Errorf("activating questionnaire %d: %w", id, err)
	}
	c.audit.Record(ctx, "activate", "questionnaire", id, "")
	return result, nil
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatReply struct {
	Reply string `json:"reply"`
}

// GeneratePrompts asks the assistant for survey prompts for serviceName.
// A reply that is not a JSON array of strings is a *domain.ParseError.
func (c *QuestionnaireController) GeneratePrompts(ctx context.Context, serviceName string) ([]string, error) {
	serviceName = strings.TrimSpace(serviceName)
	if err := required("service", serviceName, "Please enter the Office / Service Name."); err != nil {
		return nil, err
	}

	var reply chatReply
	err := c.transport.Do(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   "/chat",
		Body: chatRequest{Message: fmt.Sprintf(
			"Generate exactly %d client satisfaction survey questions for %q. Return ONLY a JSON array of strings.",
			GeneratedPromptCount, serviceName)},
	}, &reply)
	if err != nil {
		return nil, fmt.Errorf("generating questions: %w", err)
	}

	var prompts []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply.Reply)), &prompts); err != nil {
		c.logger.Info("assistant reply was not a prompt list", zap.String("reply", reply.Reply))
		return nil, &domain.ParseError{What: "generated questions", Err: err}
	}
	return prompts, nil
}
