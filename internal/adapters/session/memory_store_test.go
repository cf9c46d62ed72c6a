package session_test

import (
	"context"
	"testing"

	"github.com/AchilleasB/evaluation-client/internal/adapters/session"
	"github.com/AchilleasB/evaluation-client/internal/core/domain"
)

func TestMemoryStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	department := int64(7)
	if err := store.Set(ctx, domain.Session{Token: "tok", Role: domain.RoleHead, DepartmentID: &department}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the caller's value must not leak into the store.
	department = 99

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Token != "tok" || got.Role != domain.RoleHead {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.DepartmentID == nil || *got.DepartmentID != 7 {
		t.Errorf("expected department 7, got %v", got.DepartmentID)
	}

	cleared, err := store.Clear(ctx)
	if err != nil || !cleared {
		t.Fatalf("expected clear to report a session, got %v, %v", cleared, err)
	}

	got, _ = store.Get(ctx)
	if got.Authenticated() || got.DepartmentID != nil {
		t.Errorf("expected empty session after clear, got %+v", got)
	}

	cleared, _ = store.Clear(ctx)
	if cleared {
		t.Error("expected second clear to report nothing")
	}
}

func TestMemoryStore_RejectsHalfSessions(t *testing.T) {
	tests := []struct {
		name    string
		session domain.Session
	}{
		{name: "token_without_role", session: domain.Session{Token: "tok"}},
		{name: "role_without_token", session: domain.Session{Role: domain.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			if err := store.Set(context.Background(), tt.session); err == nil {
				t.Error("expected error but got none")
			}
			got, _ := store.Get(context.Background())
			if got.Authenticated() {
				t.Errorf("expected nothing stored, got %+v", got)
			}
		})
	}
}
