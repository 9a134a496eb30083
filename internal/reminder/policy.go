// Package reminder decides which pending contacts are due an invitation
// email and sends it.
package reminder

import (
	"strings"
	"time"

	"github.com/spigell/careermate/internal/contacts"
)

// DateLayout is the on-disk format of Contact.LastSent.
const DateLayout = "2006-01-02"

// DefaultCooldownDays applies to categories missing from the policy.
const DefaultCooldownDays = 3

var cooldownDays = map[contacts.Category]int{
	contacts.Student: 1,
	contacts.Alumni:  3,
	contacts.Staff:   3,
}

// CooldownDays returns the minimum number of days between two reminders.
func CooldownDays(category contacts.Category) int {
	if days, ok := cooldownDays[category.Normalize()]; ok {
		return days
	}
	return DefaultCooldownDays
}

// ShouldSend reports whether c is due a reminder at now. The cooldown counts
// calendar days in now's location. A last_sent value that does not parse
// makes the contact eligible.
func ShouldSend(c contacts.Contact, now time.Time) bool {
	if !c.IsPending() {
		return false
	}

	lastSent := strings.TrimSpace(c.LastSent)
	if lastSent == "" {
		return true
	}

	last, err := time.ParseInLocation(DateLayout, lastSent, now.Location())
	if err != nil {
		return true
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return !today.Before(last.AddDate(0, 0, CooldownDays(c.Category)))
}
