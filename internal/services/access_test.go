package services

import (
	"context"
	"errors"
	"testing"

	"frameit/internal/domain"
)

func TestAccessService_VerifyAccessCode(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{ID: "ev-1", Name: "Launch Party", AccessCode: "4821"}

	tests := []struct {
		name     string
		eventID  string
		code     string
		want     bool
		wantErr  error
	}{
		{name: "exact match", eventID: "ev-1", code: "4821", want: true},
		{name: "surrounding whitespace trimmed", eventID: "ev-1", code: "  4821\n", want: true},
		{name: "wrong code", eventID: "ev-1", code: "0000", want: false},
		{name: "empty code", eventID: "ev-1", code: "", want: false},
		{name: "unknown event", eventID: "ev-missing", code: "4821", wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAccessService(newMockEventRepo(event))
			got, err := svc.VerifyAccessCode(ctx, tt.eventID, tt.code)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected verified=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestAccessService_ResolveEvent(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{ID: "ev-1", Name: "Launch Party"}
	svc := NewAccessService(newMockEventRepo(event))

	got, err := svc.ResolveEvent(ctx, "ev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "ev-1" {
		t.Fatalf("resolved wrong event: %s", got.ID)
	}

	// A typed ID arrives with whatever whitespace the visitor left in.
	if _, err := svc.ResolveEvent(ctx, "  ev-1  "); err != nil {
		t.Fatalf("expected trimmed lookup to succeed, got %v", err)
	}

	if _, err := svc.ResolveEvent(ctx, "ev-missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
