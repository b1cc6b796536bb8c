package jobs

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID("deck-")
	b := GenerateID("deck-")
	if !strings.HasPrefix(a, "deck-") || len(a) != len("deck-")+36 {
		t.Errorf("GenerateID() = %q, want deck- followed by a UUID", a)
	}
	if a == b {
		t.Errorf("GenerateID() returned %q twice", a)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		path   string
		action string
		ok     bool
	}{
		{"/api/deck/undo", "undo", true},
		{"/api/deck/swipe", "swipe", true},
		{"/api/deck/", "", false},
		{"/api/deck/a/b", "", false},
		{"/api/trash/clear", "", false},
	}
	for _, tt := range tests {
		action, ok := ParseAction(tt.path, "/api/deck/")
		if action != tt.action || ok != tt.ok {
			t.Errorf("ParseAction(%q) = (%q, %v), want (%q, %v)", tt.path, action, ok, tt.action, tt.ok)
		}
	}
}

func TestCheckDeck(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"/api/deck/undo", true},
		{"/api/deck/undo?deckId=deck-1", true},
		{"/api/deck/undo?deckId=deck-2", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("POST", tt.url, nil)
		if got := CheckDeck(r, "deck-1"); got != tt.want {
			t.Errorf("CheckDeck(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
