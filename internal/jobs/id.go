// Package jobs holds small helpers shared by the HTTP handlers that operate
// on a deck: ID generation and route parsing.
package jobs

import "github.com/google/uuid"

// GenerateID creates a new random ID with the given prefix.
// The prefix should include a trailing dash, e.g. "deck-".
func GenerateID(prefix string) string {
	return prefix + uuid.NewString()
}
