package mail

import (
	"bytes"
	"strings"
	"testing"

	"github.com/civic-action/platform/internal/config"
	"go.uber.org/zap"
)

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"ok", Message{From: "a@example.org", To: []string{"b@example.org"}}, false},
		{"no sender", Message{To: []string{"b@example.org"}}, true},
		{"no recipients", Message{From: "a@example.org"}, true},
	}
	for _, tt := range tests {
		if err := tt.msg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v", tt.name, err)
		}
	}
}

func TestBuildGomailHeaders(t *testing.T) {
	m := buildGomail(Message{
		From:    "Jane Doe <noreply@example.org>",
		To:      []string{"mayor@example.org"},
		Cc:      []string{"council@example.org", "clerk@example.org"},
		ReplyTo: "jane@example.org",
		Subject: "Fix the lane",
		Text:    "Please.",
	})

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"To: mayor@example.org",
		"Cc: council@example.org, clerk@example.org",
		"Reply-To: jane@example.org",
		"Subject: Fix the lane",
		"Please.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("message missing %q:\n%s", want, out)
		}
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(&config.Config{EmailProvider: "pigeon"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
