package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/services"
	"github.com/AchilleasB/evaluation-client/internal/mocks"
)

func newAuditor(store *mocks.MockSessionStore) (*services.Auditor, *mocks.MockAuditPublisher) {
	publisher := mocks.NewMockAuditPublisher()
	return services.NewAuditor(publisher, store, nil, nil), publisher
}

func TestAccountController_Update(t *testing.T) {
	department := int64(3)
	tests := []struct {
		name      string
		update    domain.AccountUpdate
		wantErr   bool
		wantField string
		wantCalls int
	}{
		{
			name:      "role_and_department",
			update:    domain.AccountUpdate{Username: "bob", Role: domain.RoleHead, DepartmentID: &department},
			wantCalls: 2,
		},
		{
			name:      "role_without_department",
			update:    domain.AccountUpdate{Username: "bob", Role: domain.RoleHead},
			wantCalls: 2,
		},
		{
			name:      "blank_username",
			update:    domain.AccountUpdate{Username: "  ", Role: domain.RoleUser},
			wantErr:   true,
			wantField: "username",
		},
		{
			name:      "missing_role",
			update:    domain.AccountUpdate{Username: "bob"},
			wantErr:   true,
			wantField: "role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := mocks.NewMockTransport()
			transport.On(http.MethodGet, "/users", []map[string]any{{"id": 9, "username": "bob", "role": "head"}})
			store := mocks.NewMockSessionStore()
			store.Seed(mocks.CreateTestSession(domain.RoleHR))
			auditor, publisher := newAuditor(store)
			controller := services.NewAccountController(transport, auditor, nil)

			result, err := controller.Update(context.Background(), 9, tt.update)

			if transport.CallCount() != tt.wantCalls {
				t.Errorf("expected %d requests, got %d", tt.wantCalls, transport.CallCount())
			}
			if tt.wantErr {
				var validationErr *domain.ValidationError
				if !errors.As(err, &validationErr) || validationErr.Field != tt.wantField {
					t.Fatalf("expected validation error on %s, got %v", tt.wantField, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			put := transport.CallsTo(http.MethodPut, "/users/9")
			if len(put) != 1 || put[0].Request.Route != "/users/{id}" {
				t.Fatalf("expected one PUT /users/9, got %+v", put)
			}
			body := put[0].Request.Body.(domain.AccountUpdate)
			if (body.DepartmentID == nil) != (tt.update.DepartmentID == nil) {
				t.Error("department must be sent exactly as given")
			}
			if result.State != services.ListLoaded {
				t.Errorf("expected reloaded list, got %s", result.State)
			}
			events := publisher.Events()
			if len(events) != 1 || events[0].Action != "update" || events[0].ActorRole != "hr" {
				t.Errorf("unexpected audit events: %+v", events)
			}
		})
	}
}

func TestAccountController_DeleteRequiresConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		confirmer *mocks.MockConfirmer
		wantErr   error
		wantCalls int
	}{
		{name: "no_confirmer", confirmer: nil, wantErr: domain.ErrNotConfirmed},
		{name: "declined", confirmer: &mocks.MockConfirmer{Answer: false}, wantErr: domain.ErrNotConfirmed},
		{name: "confirmed", confirmer: &mocks.MockConfirmer{Answer: true}, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := mocks.NewMockTransport()
			transport.On(http.MethodGet, "/users", []map[string]any{})
			controller := services.NewAccountController(transport, nil, nil)

			var err error
			if tt.confirmer == nil {
				_, err = controller.Delete(context.Background(), 4, "carol", nil)
			} else {
				_, err = controller.Delete(context.Background(), 4, "carol", tt.confirmer)
			}

			if !errors.Is(err, tt.wantErr) && !(tt.wantErr == nil && err == nil) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if transport.CallCount() != tt.wantCalls {
				t.Errorf("expected %d requests, got %d", tt.wantCalls, transport.CallCount())
			}
			if tt.confirmer != nil && len(tt.confirmer.Prompts) != 1 {
				t.Error("expected the operator to be asked once")
			}
		})
	}
}

func TestAccountController_CreateEnforcesPasswordGate(t *testing.T) {
	transport := mocks.NewMockTransport()
	controller := services.NewAccountController(transport, nil, nil)

	_, err := controller.Create(context.Background(), domain.AccountCreate{Username: "dave", Password: "abc", Role: domain.RoleUser})

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "password" {
		t.Fatalf("expected password validation error, got %v", err)
	}
	if transport.CallCount() != 0 {
		t.Errorf("expected no requests, got %d", transport.CallCount())
	}

	transport.On(http.MethodGet, "/users", []map[string]any{{"id": 1, "username": "dave", "role": "user"}})
	result, err := controller.Create(context.Background(), domain.AccountCreate{Username: "dave", Password: "Abcdef1!", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != services.ListLoaded || result.Items[0].Username != "dave" {
		t.Errorf("expected the server's list after create, got %+v", result)
	}
}

func TestAccountController_CreateWithHead(t *testing.T) {
	tests := []struct {
		name        string
		head        domain.HeadAccount
		setupMock   func(*mocks.MockTransport)
		wantMessage string
		wantCalls   int
	}{
		{
			name:      "created",
			head:      domain.HeadAccount{DepartmentName: "Finance", Username: "fin-head", Password: "Abcdef1!"},
			setupMock: func(m *mocks.MockTransport) {},
			wantCalls: 2,
		},
		{
			name:        "missing_field",
			head:        domain.HeadAccount{DepartmentName: "Finance", Password: "Abcdef1!"},
			setupMock:   func(m *mocks.MockTransport) {},
			wantMessage: "Please fill all fields",
		},
		{
			name:        "weak_password",
			head:        domain.HeadAccount{DepartmentName: "Finance", Username: "fin-head", Password: "password"},
			setupMock:   func(m *mocks.MockTransport) {},
			wantMessage: "Password must contain an uppercase letter, a number, a special character",
		},
		{
			name: "department_exists",
			head: domain.HeadAccount{DepartmentName: "Finance", Username: "fin-head", Password: "Abcdef1!"},
			setupMock: func(m *mocks.MockTransport) {
				m.Fail(http.MethodPost, "/departments/create-with-user", &domain.HTTPError{Status: 400, Detail: "Department exists"})
			},
			wantMessage: services.MsgDepartmentExists,
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := mocks.NewMockTransport()
			transport.On(http.MethodGet, "/users", []map[string]any{{"id": 1, "username": "fin-head", "role": "head", "department_id": 1}})
			tt.setupMock(transport)
			controller := services.NewAccountController(transport, nil, nil)

			_, err := controller.CreateWithHead(context.Background(), tt.head)

			if transport.CallCount() != tt.wantCalls {
				t.Errorf("expected %d requests, got %d", tt.wantCalls, transport.CallCount())
			}
			if tt.wantMessage == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				body := transport.CallsTo(http.MethodPost, "/departments/create-with-user")[0].Request.Body.(domain.HeadAccount)
				if body.Role != domain.RoleHead {
					t.Errorf("expected head role, got %q", body.Role)
				}
				return
			}
			var validationErr *domain.ValidationError
			if !errors.As(err, &validationErr) || validationErr.Message != tt.wantMessage {
				t.Errorf("expected %q, got %v", tt.wantMessage, err)
			}
		})
	}
}
