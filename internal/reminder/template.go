package reminder

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/spigell/careermate/internal/contacts"
)

const (
	DefaultSubject = "👋 {{.Name}}, You're Invited to CareerMate Discord!"
	DefaultBody    = `
Hi {{.Name}},

We noticed you haven't joined CareerMate yet!

Join us here 👉 {{.InviteLink}}

We share AI/ML, tech, jobs, and cool collab ideas!

Best,
CareerMate team
`
)

// Message is one rendered reminder.
type Message struct {
	To      string
	Name    string
	Subject string
	Body    string
}

// Template renders reminder subjects and bodies.
type Template struct {
	subject *template.Template
	body    *template.Template
}

// NewTemplate parses the subject and body; empty values fall back to the defaults.
func NewTemplate(subject, body string) (*Template, error) {
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}
	if strings.TrimSpace(body) == "" {
		body = DefaultBody
	}

	subj, err := template.New("subject").Option("missingkey=error").Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}

	b, err := template.New("body").Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}

	return &Template{subject: subj, body: b}, nil
}

// Render builds the message for c.
func (t *Template) Render(c contacts.Contact, inviteLink string) (Message, error) {
	data := struct {
		Name       string
		Email      string
		InviteLink string
	}{
		Name:       c.Name,
		Email:      c.Email,
		InviteLink: inviteLink,
	}

	var subject, body strings.Builder
	if err := t.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render body: %w", err)
	}

	return Message{
		To:      strings.TrimSpace(c.Email),
		Name:    c.Name,
		Subject: strings.TrimSpace(subject.String()),
		Body:    body.String(),
	}, nil
}
