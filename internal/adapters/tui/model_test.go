package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/services"
	"github.com/AchilleasB/evaluation-client/internal/mocks"
)

const submitPath = "/evaluations/4/submit"

func testTransport() *mocks.MockTransport {
	transport := mocks.NewMockTransport()
	transport.On(http.MethodGet, "/public/active-questionnaire", map[string]any{
		"id":      4,
		"content": `{"service":"Building Permits","questions":["Were staff helpful?","Was the wait short?"]}`,
	})
	return transport
}

// loadedModel returns a model that has processed its initial load.
func loadedModel(t *testing.T, transport *mocks.MockTransport) (Model, *services.SubmissionFlow) {
	t.Helper()
	flow := services.NewSubmissionFlow(transport, nil, nil, nil)
	model := NewModel(context.Background(), flow, nil)

	updated, _ := model.Update(model.Init()())
	return updated.(Model), flow
}

func press(t *testing.T, model Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var updated tea.Model
		updated, cmd = model.Update(msg)
		model = updated.(Model)
	}
	return model, cmd
}

func fill(t *testing.T, flow *services.SubmissionFlow) {
	t.Helper()
	_ = flow.SetCategory("Business")
	_ = flow.Rate(0, 4)
	_ = flow.Rate(1, 5)
	_ = flow.SetFeedbackKind("Suggestion")
	_ = flow.SetFeedbackText("Open earlier on Mondays.")
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModelLoad(t *testing.T) {
	model, _ := loadedModel(t, testTransport())

	view := model.View()
	for _, want := range []string{"Building Permits", "Were staff helpful?", "Was the wait short?", "Citizen"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModelNoActiveEvaluation(t *testing.T) {
	transport := mocks.NewMockTransport()
	transport.Fail(http.MethodGet, "/public/active-questionnaire", &domain.HTTPError{Status: http.StatusNotFound})

	model, _ := loadedModel(t, transport)

	if !strings.Contains(model.View(), services.MsgNoActiveEvaluation) {
		t.Error("expected the no active evaluation message")
	}
}

func TestModelRetryAfterError(t *testing.T) {
	transport := mocks.NewMockTransport()
	transport.Fail(http.MethodGet, "/public/active-questionnaire", &domain.HTTPError{Status: http.StatusBadGateway})
	model, _ := loadedModel(t, transport)
	if !strings.Contains(model.View(), services.MsgLoadFailed) {
		t.Fatal("expected the load failure message")
	}

	transport.On(http.MethodGet, "/public/active-questionnaire", map[string]any{
		"id": 4, "content": `{"service":"Permits","questions":["Q1"]}`,
	})
	model, cmd := press(t, model, "r")
	if cmd == nil {
		t.Fatal("retry should issue a load command")
	}
	updated, _ := model.Update(cmd())

	if got := updated.(Model).view.State; got != services.StateReady {
		t.Errorf("expected ready after retry, got %s", got)
	}
}

func TestModelRatingKeys(t *testing.T) {
	model, flow := loadedModel(t, testTransport())

	// name -> category -> first rating row
	model, _ = press(t, model, "tab", "tab", "right", "right", "right")

	view := flow.Snapshot()
	if view.Highlight[0] != 3 || view.Draft.Ratings[0] != 0 {
		t.Fatalf("expected provisional 3 with nothing committed, got %d/%d", view.Highlight[0], view.Draft.Ratings[0])
	}

	model, _ = press(t, model, "enter")
	if got := flow.Snapshot().Draft.Ratings[0]; got != 3 {
		t.Errorf("expected committed 3, got %d", got)
	}

	// Digits rate directly; leaving the row drops the highlight.
	model, _ = press(t, model, "tab", "5", "right", "shift+tab")
	view = flow.Snapshot()
	if view.Draft.Ratings[1] != 5 {
		t.Errorf("expected committed 5 on second prompt, got %d", view.Draft.Ratings[1])
	}
	if view.Highlight[1] != 5 {
		t.Errorf("expected highlight back on committed value, got %d", view.Highlight[1])
	}
	_ = model
}

func TestModelChoiceRows(t *testing.T) {
	model, flow := loadedModel(t, testTransport())

	model, _ = press(t, model, "tab", "right", "right")
	if got := flow.Snapshot().Draft.Category; got != "Business" {
		t.Errorf("expected Business, got %q", got)
	}

	model, _ = press(t, model, "left", "left")
	if got := flow.Snapshot().Draft.Category; got != domain.ClientCategories[len(domain.ClientCategories)-1] {
		t.Errorf("expected wrap to last category, got %q", got)
	}
	_ = model
}

func TestModelValidationSendsNothing(t *testing.T) {
	transport := testTransport()
	model, _ := loadedModel(t, transport)

	model, cmd := press(t, model, "ctrl+s")

	if cmd != nil {
		t.Error("an invalid draft must not produce a submit command")
	}
	if len(transport.CallsTo(http.MethodPost, submitPath)) != 0 {
		t.Error("expected no submission request")
	}
	if !strings.Contains(model.View(), "Please select a client category.") {
		t.Error("expected the category error in the view")
	}
	if model.focus != 1 {
		t.Errorf("expected focus on the category row, got %d", model.focus)
	}
}

func TestModelSubmitOnceThenLock(t *testing.T) {
	// ARRANGE
	transport := testTransport()
	model, flow := loadedModel(t, transport)
	fill(t, flow)

	// ACT: two triggers before the first resolves.
	model, first := press(t, model, "ctrl+s")
	model, second := press(t, model, "ctrl+s")
	if first == nil {
		t.Fatal("expected a submit command")
	}
	if second != nil {
		t.Error("second trigger while submitting must be a no-op")
	}
	updated, _ := model.Update(first())
	model = updated.(Model)

	// ASSERT
	if got := len(transport.CallsTo(http.MethodPost, submitPath)); got != 1 {
		t.Fatalf("expected one submission, got %d", got)
	}
	if !strings.Contains(model.View(), services.MsgSubmitted) {
		t.Error("expected the thank-you message")
	}

	before := model.View()
	for _, k := range []string{"tab", "right", "enter", "ctrl+s", "esc", "3"} {
		var cmd tea.Cmd
		model, cmd = press(t, model, k)
		if cmd != nil {
			t.Errorf("%s produced a command while locked", k)
		}
	}
	updated, cmd := model.Update(tea.MouseMsg{X: 3, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if cmd != nil {
		t.Error("pointer input produced a command while locked")
	}
	model = updated.(Model)

	if model.View() != before {
		t.Error("locked view changed")
	}
	if got := len(transport.CallsTo(http.MethodPost, submitPath)); got != 1 {
		t.Errorf("expected still one submission, got %d", got)
	}

	// Closing the program is the one way out and needs no confirmation.
	_, cmd = press(t, model, "ctrl+c")
	if !isQuit(cmd) {
		t.Error("expected ctrl+c to quit after submission")
	}
}

func TestModelSubmitFailureKeepsAnswers(t *testing.T) {
	transport := testTransport()
	transport.Fail(http.MethodPost, submitPath, &domain.HTTPError{Status: http.StatusInternalServerError})
	model, flow := loadedModel(t, transport)
	fill(t, flow)

	model, cmd := press(t, model, "ctrl+s")
	updated, _ := model.Update(cmd())
	model = updated.(Model)

	if !strings.Contains(model.View(), services.MsgSubmissionFailed) {
		t.Error("expected the retry message")
	}
	if got := flow.Snapshot().Draft.FeedbackText; got != "Open earlier on Mondays." {
		t.Errorf("draft lost: %q", got)
	}
}

func TestModelLeaveConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(*services.SubmissionFlow)
		key       string
		wantQuit  bool
		wantArmed bool
	}{
		{
			name:     "untouched_form_quits",
			prepare:  func(*services.SubmissionFlow) {},
			key:      "ctrl+c",
			wantQuit: true,
		},
		{
			name:      "answers_warn_first",
			prepare:   func(f *services.SubmissionFlow) { _ = f.Rate(0, 2) },
			key:       "ctrl+c",
			wantArmed: true,
		},
		{
			name:      "esc_warns_too",
			prepare:   func(f *services.SubmissionFlow) { _ = f.SetCategory("Citizen") },
			key:       "esc",
			wantArmed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, flow := loadedModel(t, testTransport())
			tt.prepare(flow)

			model, cmd := press(t, model, tt.key)

			if isQuit(cmd) != tt.wantQuit {
				t.Errorf("expected quit=%v", tt.wantQuit)
			}
			if model.leaveArmed != tt.wantArmed {
				t.Errorf("expected armed=%v", tt.wantArmed)
			}
			if tt.wantArmed {
				if !strings.Contains(model.View(), LeaveWarning) {
					t.Error("expected the leave warning")
				}
				if _, cmd := press(t, model, "ctrl+c"); !isQuit(cmd) {
					t.Error("second request should quit")
				}
			}
		})
	}
}
