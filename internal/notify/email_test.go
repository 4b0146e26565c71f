package notify

import "testing"

func TestNewMailerValidation(t *testing.T) {
	if _, err := NewMailer(SMTPConfig{From: "a@b.c"}); err == nil {
		t.Fatalf("expected error for missing host")
	}
	if _, err := NewMailer(SMTPConfig{Host: "smtp.example.com"}); err == nil {
		t.Fatalf("expected error for missing sender")
	}
}

func TestNewMailerDefaultPort(t *testing.T) {
	m, err := NewMailer(SMTPConfig{Host: "smtp.example.com", From: "a@b.c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.cfg.Port != 587 {
		t.Fatalf("expected default port 587, got %d", m.cfg.Port)
	}
}
