// Package deck implements the photo review deck: the ordered photo catalog,
// the review cursor, the append-only action ledger and the trash queue that
// is derived from it.
//
// A Deck is not safe for concurrent use. Callers that receive events from
// several goroutines (the web server) serialise access themselves; see the
// session package.
package deck

import "time"

// Photo is a single image under review. URI is the identity key; every other
// field is descriptive and optional.
type Photo struct {
	URI      string    `json:"uri"`
	Name     string    `json:"name"`
	MIMEType string    `json:"mimeType,omitempty"`
	Size     int64     `json:"size,omitempty"`
	Modified time.Time `json:"modified,omitzero"`

	// Populated from EXIF when the source can read it.
	TakenAt time.Time `json:"takenAt,omitzero"`
	Camera  string    `json:"camera,omitempty"`
}

// ActionKind is the decision recorded for a photo.
type ActionKind string

const (
	ActionKeep   ActionKind = "keep"
	ActionDelete ActionKind = "delete"
)

// Action is one ledger entry.
type Action struct {
	PhotoURI  string     `json:"photoUri"`
	Kind      ActionKind `json:"action"`
	Timestamp time.Time  `json:"timestamp"`
}
