package deck

// ledgerEntry pairs an action with its settlement state. A settled deletion
// was cleared from the trash or purged, and no longer counts towards trash
// membership even if later entries are undone.
type ledgerEntry struct {
	Action
	settled bool
}

// Ledger is the append-only log of review decisions. The only removal is a
// single-step Pop used by undo.
type Ledger struct {
	entries []ledgerEntry
}

// Append adds an action to the end of the log.
func (l *Ledger) Append(a Action) {
	l.entries = append(l.entries, ledgerEntry{Action: a})
}

// Pop removes and returns the most recent action.
func (l *Ledger) Pop() (Action, bool) {
	if len(l.entries) == 0 {
		return Action{}, false
	}
	last := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return last.Action, true
}

// Last returns the most recent action without removing it.
func (l *Ledger) Last() (Action, bool) {
	if len(l.entries) == 0 {
		return Action{}, false
	}
	return l.entries[len(l.entries)-1].Action, true
}

// Len returns the number of recorded actions.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the log, oldest first.
func (l *Ledger) Entries() []Action {
	out := make([]Action, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Action
	}
	return out
}

// Reset empties the log.
func (l *Ledger) Reset() {
	l.entries = nil
}

// Settle marks every deletion of uri as handled.
func (l *Ledger) Settle(uri string) {
	for i := range l.entries {
		if l.entries[i].PhotoURI == uri && l.entries[i].Kind == ActionDelete {
			l.entries[i].settled = true
		}
	}
}

// trashedSince reports whether uri is pending deletion according to the log
// and, if so, the ledger position at which it entered the trash.
//
// uri is pending when its latest entry is an unsettled Delete. The entry
// position is the oldest Delete of the trailing run of unsettled Deletes for
// uri, so deleting an already trashed photo again does not move it.
func (l *Ledger) trashedSince(uri string) (int, bool) {
	since := -1
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.PhotoURI != uri {
			continue
		}
		if e.Kind != ActionDelete || e.settled {
			break
		}
		since = i
	}
	return since, since >= 0
}
