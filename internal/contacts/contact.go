// Package contacts holds the outreach contact table shared by the reminder
// batch and the join-matching engine.
package contacts

import "strings"

// Category governs the reminder cadence of a contact.
type Category string

const (
	Student Category = "student"
	Alumni  Category = "alumni"
	Staff   Category = "staff"
)

// Normalize lower-cases and trims the category.
func (c Category) Normalize() Category {
	return Category(strings.ToLower(strings.TrimSpace(string(c))))
}

// Status is the onboarding state of a contact. Values are compared
// case-insensitively; the raw value is kept so rewrites do not reformat rows.
type Status string

const (
	Pending Status = "pending"
	Joined  Status = "joined"
)

// Is reports whether s equals other ignoring case and surrounding spaces.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(other))
}

// Columns is the on-disk column order of the contact table.
var Columns = []string{"name", "email", "type", "status", "last_sent"}

// Contact is one outreach target.
type Contact struct {
	Name     string   `mapstructure:"name"`
	Email    string   `mapstructure:"email"`
	Category Category `mapstructure:"type"`
	Status   Status   `mapstructure:"status"`
	// LastSent is the raw last reminder date (YYYY-MM-DD) or empty.
	LastSent string `mapstructure:"last_sent"`
}

func (c Contact) IsPending() bool { return c.Status.Is(Pending) }

func (c Contact) IsJoined() bool { return c.Status.Is(Joined) }

// Key identifies a contact across reloads of the table.
func (c Contact) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Name)) + "\x00" + strings.ToLower(strings.TrimSpace(c.Email))
}

func (c Contact) record() []string {
	return []string{c.Name, c.Email, string(c.Category), string(c.Status), c.LastSent}
}

// Counts summarises the table for status reports.
type Counts struct {
	Total   int
	Joined  int
	Pending int
}

// Count tallies joined contacts; everything not joined counts as pending.
func Count(list []Contact) Counts {
	counts := Counts{Total: len(list)}
	for _, c := range list {
		if c.IsJoined() {
			counts.Joined++
		}
	}
	counts.Pending = counts.Total - counts.Joined
	return counts
}
