package domain

import "strings"

const (
	// MinRating is the lowest committed rating; 0 means unrated.
	MinRating = 1
	MaxRating = 5
)

// ClientCategories are the respondent categories offered by the form.
var ClientCategories = []string{"Citizen", "Business", "Government"}

// FeedbackKinds are the feedback classifications offered by the form.
var FeedbackKinds = []string{"Compliment", "Suggestion", "Complaint"}

// EvaluationDraft holds a respondent's answers for one questionnaire.
// Ratings are aligned 1:1 with the questionnaire's prompts.
type EvaluationDraft struct {
	QuestionnaireID int64
	Name            string
	Ratings         []int
	Category        string
	FeedbackKind    string
	FeedbackText    string
}

// NewEvaluationDraft returns a draft with one unrated slot per prompt.
func NewEvaluationDraft(questionnaireID int64, prompts int) EvaluationDraft {
	return EvaluationDraft{
		QuestionnaireID: questionnaireID,
		Ratings:         make([]int, prompts),
	}
}

// Clone returns a deep copy of the draft.
func (d EvaluationDraft) Clone() EvaluationDraft {
	clone := d
	clone.Ratings = append([]int(nil), d.Ratings...)
	return clone
}

// Validate checks the draft in the order the form reports problems.
func (d EvaluationDraft) Validate() error {
	if d.Category == "" {
		return &ValidationError{Field: "client_category", Message: "Please select a client category."}
	}
	for _, rating := range d.Ratings {
		if rating < MinRating || rating > MaxRating {
			return &ValidationError{Field: "ratings", Message: "Please rate all items."}
		}
	}
	if d.FeedbackKind == "" {
		return &ValidationError{Field: "feedback_type", Message: "Please select a feedback type."}
	}
	if strings.TrimSpace(d.FeedbackText) == "" {
		return &ValidationError{Field: "feedback_message", Message: "Please enter your feedback."}
	}
	return nil
}

// EvaluationSubmission is the body of POST /evaluations/{id}/submit.
type EvaluationSubmission struct {
	Name            *string `json:"name"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	ClientCategory  string  `json:"client_category"`
	Ratings         []int   `json:"ratings"`
	FeedbackType    string  `json:"feedback_type"`
	FeedbackMessage string  `json:"feedback_message"`
}

// EvaluationResponse is a submitted evaluation as listed by
// GET /head/evaluations.
type EvaluationResponse struct {
	ID              int64  `json:"id"`
	QuestionnaireID int64  `json:"questionnaire_id"`
	Name            string `json:"name"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	ClientCategory  string `json:"client_category"`
	Ratings         []int  `json:"ratings"`
	FeedbackType    string `json:"feedback_type"`
	FeedbackMessage string `json:"feedback_message"`
}

// Respondent is the display name of the respondent.
func (r EvaluationResponse) Respondent() string {
	if strings.TrimSpace(r.Name) == "" {
		return "Anonymous"
	}
	return r.Name
}

// Stars renders each rating as a five-star strip.
func (r EvaluationResponse) Stars() []string {
	strips := make([]string, 0, len(r.Ratings))
	for _, value := range r.Ratings {
		value = min(max(value, 0), MaxRating)
		strips = append(strips, strings.Repeat("★", value)+strings.Repeat("☆", MaxRating-value))
	}
	return strips
}
