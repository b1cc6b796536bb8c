package jobs

import (
	"net/http"
	"strings"
)

// ParseAction extracts the action from a URL path like /api/deck/{action}.
// apiPrefix should be like "/api/deck/". Nested paths are rejected.
func ParseAction(path, apiPrefix string) (action string, ok bool) {
	rest, found := strings.CutPrefix(path, apiPrefix)
	if !found || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// CheckDeck reports whether the request targets deckID. Requests without a
// deckId query parameter are accepted; a mismatching one means the client is
// acting on a deck that has since been replaced.
func CheckDeck(r *http.Request, deckID string) bool {
	id := r.URL.Query().Get("deckId")
	return id == "" || id == deckID
}
