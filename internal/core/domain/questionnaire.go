package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// DefaultQuestionnaireLabel replaces the service name of a questionnaire
// whose content cannot be parsed.
const DefaultQuestionnaireLabel = "Client Satisfaction Questionnaire"

// QuestionnaireContent is the structured payload that travels as an opaque
// JSON string in the questionnaire's content field.
type QuestionnaireContent struct {
	ServiceName string   `json:"service"`
	Prompts     []string `json:"questions"`
}

// ParseQuestionnaireContent decodes the serialized content string.
func ParseQuestionnaireContent(raw string) (QuestionnaireContent, error) {
	var content QuestionnaireContent
	if strings.TrimSpace(raw) == "" {
		return content, &ParseError{What: "questionnaire content", Err: errors.New("empty document")}
	}
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return QuestionnaireContent{}, &ParseError{What: "questionnaire content", Err: err}
	}
	return content, nil
}

// Encode serializes the content into the string form the server stores.
func (c QuestionnaireContent) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Questionnaire as listed by GET /questionnaires. Content is parsed once
// when the questionnaire is decoded; ContentErr records a parse failure.
type Questionnaire struct {
	ID           int64
	DepartmentID int64
	Active       bool
	Content      QuestionnaireContent
	ContentErr   error
	RawContent   string
}

func (q *Questionnaire) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID           int64  `json:"id"`
		DepartmentID int64  `json:"department_id"`
		Content      string `json:"content"`
		IsActive     bool   `json:"is_active"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	q.ID = wire.ID
	q.DepartmentID = wire.DepartmentID
	q.Active = wire.IsActive
	q.RawContent = wire.Content
	q.Content, q.ContentErr = ParseQuestionnaireContent(wire.Content)
	return nil
}

// Label is the display name of the questionnaire. It never fails.
func (q Questionnaire) Label() string {
	if q.ContentErr != nil || strings.TrimSpace(q.Content.ServiceName) == "" {
		return DefaultQuestionnaireLabel
	}
	return q.Content.ServiceName
}

// Status is the activation label shown in questionnaire tables.
func (q Questionnaire) Status() string {
	if q.Active {
		return "Active"
	}
	return "Inactive"
}

// QuestionnaireCreate is the body of POST /questionnaires.
type QuestionnaireCreate struct {
	Content string `json:"content"`
}

// ActiveQuestionnaire is the public view returned by
// GET /public/active-questionnaire.
type ActiveQuestionnaire struct {
	ID         int64
	Content    QuestionnaireContent
	ContentErr error
}

func (q *ActiveQuestionnaire) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	q.ID = wire.ID
	q.Content, q.ContentErr = ParseQuestionnaireContent(wire.Content)
	return nil
}
