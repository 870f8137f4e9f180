package email

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestActivationMessage(t *testing.T) {
	s := NewSender(Config{Host: "smtp.example.com", FromAddress: "noreply@example.com", FromName: "Gigboard"})
	a := Activation{Email: "ann@example.com", Username: "ann", UserID: "65f0c0ffee00000000000001", SiteURL: "https://gigs.example.com/"}

	m, err := s.build(ActivationMessage(a))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"To: <ann@example.com>",
		"Subject: Activate your account",
		"Hello ann,",
		"https://gigs.example.com/users/65f0c0ffee00000000000001/activate",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("message missing %q:\n%s", want, out)
		}
	}
}

func TestBuildRejects(t *testing.T) {
	s := NewSender(Config{Host: "smtp.example.com", FromAddress: "noreply@example.com"})

	tests := []struct {
		name string
		msg  Message
	}{
		{"no recipients", Message{Subject: "x", TextBody: "y"}},
		{"no body", Message{To: []string{"ann@example.com"}, Subject: "x"}},
		{"bad recipient", Message{To: []string{"not an address"}, TextBody: "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.build(tt.msg); err == nil {
				t.Error("build should fail")
			}
		})
	}
}

func TestSendDisabled(t *testing.T) {
	s := NewSender(Config{})
	err := s.Send(context.Background(), Message{To: []string{"ann@example.com"}, TextBody: "hi"})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Send = %v, want ErrDisabled", err)
	}
}
