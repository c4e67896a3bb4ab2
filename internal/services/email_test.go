package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"frameit/internal/adapters/email"
	"frameit/internal/domain"
)

type recordingMailer struct {
	to, subject, html, text string
	err                     error
}

func (m *recordingMailer) Send(to, subject, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.to, m.subject, m.html, m.text = to, subject, html, text
	return nil
}

func TestEmailService_SendEventInvitation(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewEmailService(mailer, email.NewTemplateRenderer())

	data := &domain.EventInvitationEmailData{
		Email:      "bob@example.com",
		HostName:   "Alice",
		EventName:  "Launch Party",
		EventID:    "ev-1",
		AccessCode: "4821",
	}
	if err := svc.SendEventInvitation(context.Background(), data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mailer.to != "bob@example.com" {
		t.Fatalf("sent to %q", mailer.to)
	}
	if !strings.Contains(mailer.subject, "Launch Party") {
		t.Fatalf("subject must name the event, got %q", mailer.subject)
	}
	// The recipient needs the code at the door; both bodies must carry it.
	if !strings.Contains(mailer.html, "4821") || !strings.Contains(mailer.text, "4821") {
		t.Fatal("invitation bodies must include the access code")
	}
}

func TestEmailService_SendFailure(t *testing.T) {
	sendErr := errors.New("smtp refused")
	svc := NewEmailService(&recordingMailer{err: sendErr}, email.NewTemplateRenderer())

	err := svc.SendEventInvitation(context.Background(), &domain.EventInvitationEmailData{Email: "x@y.z"})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected send error, got %v", err)
	}
}

func TestEmailService_NilData(t *testing.T) {
	svc := NewEmailService(&recordingMailer{}, email.NewTemplateRenderer())
	if err := svc.SendEventInvitation(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil data")
	}
}
