package reminder

import (
	"strings"
	"testing"

	"github.com/spigell/careermate/internal/contacts"
)

func TestTemplateRenderDefaults(t *testing.T) {
	tmpl, err := NewTemplate("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := tmpl.Render(contacts.Contact{Name: "Monisha", Email: " monisha@example.com "}, "https://discord.gg/abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.To != "monisha@example.com" {
		t.Fatalf("unexpected recipient: %q", msg.To)
	}
	if msg.Subject != "👋 Monisha, You're Invited to CareerMate Discord!" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Hi Monisha,") || !strings.Contains(msg.Body, "https://discord.gg/abc") {
		t.Fatalf("unexpected body: %q", msg.Body)
	}
}

func TestTemplateRejectsUnknownFields(t *testing.T) {
	if _, err := NewTemplate("{{.Name", ""); err == nil {
		t.Fatalf("expected parse error")
	}

	tmpl, err := NewTemplate("Hello {{.Nickname}}", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tmpl.Render(contacts.Contact{Name: "A"}, ""); err == nil {
		t.Fatalf("expected render error for unknown field")
	}
}
