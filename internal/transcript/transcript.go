package transcript

import (
	"fmt"
	"strings"
)

// Speaker identifies the author of a transcript entry.
type Speaker string

const (
	SpeakerUser        Speaker = "user"
	SpeakerInterviewer Speaker = "interviewer"
)

// Entry is a single conversation turn. Pending marks the placeholder shown
// while an interviewer reply is in flight; it is always the last entry and
// always authored by the interviewer.
type Entry struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
	Pending bool    `json:"pending"`
}

// Transcript is the append-only conversation log. Finalized entries are
// never reordered or removed; a pending entry is replaced in place. The
// session controller serializes all access, so Transcript itself carries
// no lock (same shape as a session-guarded history slice).
type Transcript struct {
	entries []Entry
}

// New returns an empty transcript.
func New() *Transcript { return &Transcript{} }

// AppendUser appends a finalized user entry.
func (t *Transcript) AppendUser(text string) {
	t.entries = append(t.entries, Entry{Speaker: SpeakerUser, Text: text})
}

// AppendInterviewer appends a finalized interviewer entry.
func (t *Transcript) AppendInterviewer(text string) {
	t.entries = append(t.entries, Entry{Speaker: SpeakerInterviewer, Text: text})
}

// BeginPending appends the interviewer placeholder for an in-flight reply.
// At most one pending entry may exist; a second placeholder is a defect.
func (t *Transcript) BeginPending() error {
	if t.HasPending() {
		return fmt.Errorf("transcript: pending entry already present")
	}
	t.entries = append(t.entries, Entry{Speaker: SpeakerInterviewer, Pending: true})
	return nil
}

// ResolvePending replaces the placeholder in place with the finalized reply
// text. The entry keeps its array position; no new entry is appended.
func (t *Transcript) ResolvePending(text string) error {
	n := len(t.entries)
	if n == 0 || !t.entries[n-1].Pending {
		return fmt.Errorf("transcript: no pending entry to resolve")
	}
	t.entries[n-1] = Entry{Speaker: SpeakerInterviewer, Text: text}
	return nil
}

// HasPending reports whether a placeholder is outstanding.
func (t *Transcript) HasPending() bool {
	n := len(t.entries)
	return n > 0 && t.entries[n-1].Pending
}

// Len returns the number of entries, pending included.
func (t *Transcript) Len() int { return len(t.entries) }

// Last returns the most recent entry.
func (t *Transcript) Last() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Entries returns a copy of the log, safe to hand across goroutines.
func (t *Transcript) Entries() []Entry {
	cp := make([]Entry, len(t.entries))
	copy(cp, t.entries)
	return cp
}

// Finalized returns a copy of the log without any pending placeholder, the
// view sent on remote turn calls.
func (t *Transcript) Finalized() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if e.Pending {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Render serializes the finalized transcript into a single text block with
// speaker labels, the form submitted for assessment.
func (t *Transcript) Render(candidateName string) string {
	var b strings.Builder
	for i, e := range t.Finalized() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch e.Speaker {
		case SpeakerUser:
			b.WriteString(candidateName)
		default:
			b.WriteString("Interviewer")
		}
		b.WriteString(": ")
		b.WriteString(e.Text)
	}
	return b.String()
}
