package domain

import "strings"

const (
	// DefaultDisplayName is used when the client supplies no name.
	DefaultDisplayName = "Anonymous"

	MaxDisplayNameLen = 36
)

// Participant is one live occupant of a room.
type Participant struct {
	ID   ConnID
	Name string
}

// DisplayName sanitizes a user-supplied label, falling back to the default
// for blank input. Overlong names are cut rather than rejected; a display
// label is not worth failing a join over. Truncation happens on a rune
// boundary so the result stays valid UTF-8.
func DisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return DefaultDisplayName
	}
	if runes := []rune(name); len(runes) > MaxDisplayNameLen {
		name = string(runes[:MaxDisplayNameLen])
	}
	return name
}
