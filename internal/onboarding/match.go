package onboarding

import (
	"strings"

	"github.com/spigell/careermate/internal/contacts"
)

// MatchContact returns the index of the first pending contact whose name is
// contained, case-insensitively, in any of names. Contacts with an empty
// name never match. It returns -1 when nothing matches.
func MatchContact(list []contacts.Contact, names ...string) int {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(n); n != "" {
			lowered = append(lowered, n)
		}
	}

	for i, c := range list {
		if !c.IsPending() {
			continue
		}
		needle := strings.ToLower(strings.TrimSpace(c.Name))
		if needle == "" {
			continue
		}
		for _, name := range lowered {
			if strings.Contains(name, needle) {
				return i
			}
		}
	}
	return -1
}
