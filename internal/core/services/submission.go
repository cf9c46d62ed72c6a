package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/adapters/metrics"
	"github.com/AchilleasB/evaluation-client/internal/clock"
	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

type SubmissionState int

const (
	StateLoading SubmissionState = iota
	StateReady
	StateValidating
	StateSubmitting
	StateLocked
	StateNoActive
	StateError
)

func (s SubmissionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateLocked:
		return "locked"
	case StateNoActive:
		return "no_active"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("SubmissionState(%d)", int(s))
}

const (
	MsgNoActiveEvaluation = "No active evaluation is available at this time."
	MsgLoadFailed         = "The evaluation could not be loaded. Please try again."
	MsgSubmissionFailed   = "Submission failed. Please try again."
	MsgSubmitted          = "Thank you! Your evaluation has been submitted."
)

// InputKind classifies a user input reaching the evaluation form.
type InputKind int

const (
	InputKey InputKind = iota
	InputPointer
	InputNavigate
)

func (k InputKind) String() string {
	switch k {
	case InputKey:
		return "key"
	case InputPointer:
		return "pointer"
	case InputNavigate:
		return "navigate"
	}
	return fmt.Sprintf("InputKind(%d)", int(k))
}

type Input struct {
	Kind InputKind
	Name string
}

// SubmissionView is a copy of the flow's state for rendering.
type SubmissionView struct {
	State           SubmissionState
	QuestionnaireID int64
	ServiceName     string
	Prompts         []string
	Draft           domain.EvaluationDraft
	// Highlight is the star count to draw per prompt: the hovered value
	// when one is set, else the committed rating.
	Highlight  []int
	Message    string
	FieldError *domain.ValidationError
}

// SubmissionFlow drives one respondent's evaluation from loading the active
// questionnaire to the locked, submitted state. Submission is split in two:
// Prepare validates and claims the single in-flight slot synchronously at
// trigger time, and the returned attempt performs the network call.
type SubmissionFlow struct {
	transport ports.Transport
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *zap.Logger

	mu          sync.Mutex
	state       SubmissionState
	serviceName string
	prompts     []string
	draft       domain.EvaluationDraft
	hover       []int
	message     string
	fieldErr    *domain.ValidationError
	inFlight    bool
	locked      bool
}

func NewSubmissionFlow(transport ports.Transport, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) *SubmissionFlow {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionFlow{
		transport: transport,
		clock:     clk,
		metrics:   m,
		logger:    logger,
		state:     StateLoading,
	}
}

// Load fetches the active questionnaire. No active questionnaire ends in
// StateNoActive; any other failure ends in StateError, from which Load may
// be called again. Load is refused once a form is shown so a reload never
// discards answers.
func (f *SubmissionFlow) Load(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.locked:
		f.mu.Unlock()
		return domain.ErrLocked
	case f.state == StateSubmitting:
		f.mu.Unlock()
		return domain.ErrInFlight
	case f.state != StateLoading && f.state != StateError:
		state := f.state
		f.mu.Unlock()
		return fmt.Errorf("evaluation is %s", state)
	}
	f.state = StateLoading
	f.message = ""
	f.fieldErr = nil
	f.mu.Unlock()

	var active domain.ActiveQuestionnaire
	err := f.transport.DoPublic(ctx, ports.Request{
		Method: http.MethodGet,
		Path:   "/public/active-questionnaire",
	}, &active)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case domain.HTTPStatus(err) == http.StatusNotFound:
		f.state = StateNoActive
		f.message = MsgNoActiveEvaluation
		return nil
	case err != nil:
		f.logger.Warn("loading active questionnaire failed", zap.Error(err))
		f.state = StateError
		f.message = MsgLoadFailed
		return err
	case active.ContentErr != nil:
		f.logger.Warn("active questionnaire content is malformed", zap.Int64("questionnaire_id", active.ID), zap.Error(active.ContentErr))
		f.state = StateError
		f.message = MsgLoadFailed
		return active.ContentErr
	case len(active.Content.Prompts) == 0:
		f.state = StateError
		f.message = MsgLoadFailed
		return &domain.ParseError{What: "questionnaire content", Err: errors.New("no questions")}
	}

	f.serviceName = active.Content.ServiceName
	if isBlank(f.serviceName) {
		f.serviceName = domain.DefaultQuestionnaireLabel
	}
	f.prompts = append([]string(nil), active.Content.Prompts...)
	f.draft = domain.NewEvaluationDraft(active.ID, len(f.prompts))
	f.hover = make([]int, len(f.prompts))
	f.state = StateReady
	return nil
}

// editable reports why the draft cannot be edited right now. Callers hold
// f.mu.
func (f *SubmissionFlow) editable() error {
	switch {
	case f.locked:
		return domain.ErrLocked
	case f.state == StateSubmitting:
		return domain.ErrInFlight
	case f.state != StateReady:
		return fmt.Errorf("evaluation is %s", f.state)
	}
	return nil
}

func (f *SubmissionFlow) checkPrompt(index int) error {
	if index < 0 || index >= len(f.prompts) {
		return &domain.ValidationError{Field: "ratings", Message: fmt.Sprintf("No question %d.", index+1)}
	}
	return nil
}

func checkRating(value int) error {
	if value < domain.MinRating || value > domain.MaxRating {
		return &domain.ValidationError{Field: "ratings", Message: fmt.Sprintf("Ratings go from %d to %d.", domain.MinRating, domain.MaxRating)}
	}
	return nil
}

// Hover shows value stars on prompt index without committing it.
func (f *SubmissionFlow) Hover(index, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	if err := f.checkPrompt(index); err != nil {
		return err
	}
	if err := checkRating(value); err != nil {
		return err
	}
	f.hover[index] = value
	return nil
}

// Unhover drops the provisional highlight so the committed rating shows.
func (f *SubmissionFlow) Unhover(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	if err := f.checkPrompt(index); err != nil {
		return err
	}
	f.hover[index] = 0
	return nil
}

// Rate commits value for prompt index.
func (f *SubmissionFlow) Rate(index, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	if err := f.checkPrompt(index); err != nil {
		return err
	}
	if err := checkRating(value); err != nil {
		return err
	}
	f.draft.Ratings[index] = value
	f.hover[index] = 0
	return nil
}

func (f *SubmissionFlow) SetCategory(category string) error {
	return f.edit(func(d *domain.EvaluationDraft) { d.Category = category })
}

func (f *SubmissionFlow) SetFeedbackKind(kind string) error {
	return f.edit(func(d *domain.EvaluationDraft) { d.FeedbackKind = kind })
}

func (f *SubmissionFlow) SetFeedbackText(text string) error {
	return f.edit(func(d *domain.EvaluationDraft) { d.FeedbackText = text })
}

// SetName sets the optional respondent name.
func (f *SubmissionFlow) SetName(name string) error {
	return f.edit(func(d *domain.EvaluationDraft) { d.Name = name })
}

func (f *SubmissionFlow) edit(apply func(*domain.EvaluationDraft)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	apply(&f.draft)
	return nil
}

// Intercept is the input boundary: once the evaluation is submitted every
// key, pointer and navigation input is consumed and does nothing. Consumed
// inputs are counted by kind.
func (f *SubmissionFlow) Intercept(in Input) bool {
	f.mu.Lock()
	locked := f.locked
	f.mu.Unlock()
	if !locked {
		return false
	}
	f.metrics.InputBlocked(in.Kind.String())
	f.logger.Debug("input ignored after submission", zap.Stringer("kind", in.Kind), zap.String("input", in.Name))
	return true
}

func (f *SubmissionFlow) Locked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locked
}

// SubmitAttempt is one claimed submission. Send must be called exactly
// once.
type SubmitAttempt struct {
	flow            *SubmissionFlow
	questionnaireID int64
	payload         domain.EvaluationSubmission
}

// Prepare validates the draft and claims the in-flight slot. It fails with
// domain.ErrInFlight while another attempt is outstanding, domain.ErrLocked
// after a successful submission, and a *domain.ValidationError when the
// draft is incomplete. No request is sent by Prepare.
func (f *SubmissionFlow) Prepare() (*SubmitAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locked {
		return nil, domain.ErrLocked
	}
	if f.inFlight {
		return nil, domain.ErrInFlight
	}
	if f.state != StateReady {
		return nil, fmt.Errorf("evaluation is %s", f.state)
	}

	f.state = StateValidating
	if err := f.draft.Validate(); err != nil {
		var validationErr *domain.ValidationError
		errors.As(err, &validationErr)
		f.state = StateReady
		f.fieldErr = validationErr
		f.message = validationErr.Message
		f.metrics.Submission("invalid")
		return nil, err
	}

	f.inFlight = true
	f.state = StateSubmitting
	f.fieldErr = nil
	f.message = ""

	now := f.clock.Now()
	draft := f.draft.Clone()
	payload := domain.EvaluationSubmission{
		Date:            now.Format("2006-01-02"),
		Time:            now.Format("15:04"),
		ClientCategory:  draft.Category,
		Ratings:         draft.Ratings,
		FeedbackType:    draft.FeedbackKind,
		FeedbackMessage: strings.TrimSpace(draft.FeedbackText),
	}
	if name := strings.TrimSpace(draft.Name); name != "" {
		payload.Name = &name
	}
	return &SubmitAttempt{flow: f, questionnaireID: draft.QuestionnaireID, payload: payload}, nil
}

// Send performs the single network submission. On failure the flow returns
// to StateReady with the draft untouched; on success it locks for good.
func (a *SubmitAttempt) Send(ctx context.Context) error {
	f := a.flow
	err := f.transport.DoPublic(ctx, ports.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/evaluations/%d/submit", a.questionnaireID),
		Route:  "/evaluations/{id}/submit",
		Body:   a.payload,
	}, nil)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false

	if err != nil {
		f.logger.Warn("evaluation submission failed", zap.Int64("questionnaire_id", a.questionnaireID), zap.Error(err))
		f.state = StateReady
		f.message = MsgSubmissionFailed
		f.metrics.Submission("failed")
		return err
	}

	f.locked = true
	f.state = StateLocked
	f.message = MsgSubmitted
	for i := range f.hover {
		f.hover[i] = 0
	}
	f.metrics.Submission("ok")
	f.logger.Info("evaluation submitted", zap.Int64("questionnaire_id", a.questionnaireID))
	return nil
}

// Submit is Prepare followed by Send.
func (f *SubmissionFlow) Submit(ctx context.Context) error {
	attempt, err := f.Prepare()
	if err != nil {
		return err
	}
	return attempt.Send(ctx)
}

func (f *SubmissionFlow) Snapshot() SubmissionView {
	f.mu.Lock()
	defer f.mu.Unlock()

	view := SubmissionView{
		State:           f.state,
		QuestionnaireID: f.draft.QuestionnaireID,
		ServiceName:     f.serviceName,
		Prompts:         append([]string(nil), f.prompts...),
		Draft:           f.draft.Clone(),
		Highlight:       make([]int, len(f.prompts)),
		Message:         f.message,
	}
	if f.fieldErr != nil {
		fieldErr := *f.fieldErr
		view.FieldError = &fieldErr
	}
	for i := range f.prompts {
		view.Highlight[i] = f.draft.Ratings[i]
		if f.hover[i] > 0 {
			view.Highlight[i] = f.hover[i]
		}
	}
	return view
}
