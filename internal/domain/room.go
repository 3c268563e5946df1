// Package domain contains entity types without logic, just meta-data.
package domain

import "strings"

type (
	// RoomCode is the human-shareable room identifier, always stored
	// uppercase in the XXXX-XXXX shape.
	RoomCode string

	// ConnID identifies one live connection, issued by the transport layer.
	ConnID string
)

// NormalizeCode maps user input to the canonical room code form.
// Codes are case-insensitive on the way in, uppercase everywhere else.
func NormalizeCode(raw string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(raw)))
}
