package history

import (
	"context"
	"errors"

	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
	"github.com/VaioMishra/Product-Manager-AI/internal/transcript"
)

// Record is one finished interview run. ID doubles as the sort key:
// RFC3339Nano timestamps order lexicographically.
type Record struct {
	ID         string              `json:"id"`
	Kind       string              `json:"type"`
	Date       string              `json:"date"`
	Category   string              `json:"category,omitempty"`
	Topic      string              `json:"topic,omitempty"`
	Transcript []transcript.Entry  `json:"transcript"`
	Feedback   dialogue.Assessment `json:"feedback"`
}

// Profile is the locally saved candidate identity.
type Profile struct {
	CandidateName     string `json:"candidateName"`
	YearsOfExperience int    `json:"yearsOfExperience"`
	ResumeLink        string `json:"resumeLink,omitempty"`
}

// ErrNoProfile is returned by LoadProfile when none was saved.
var ErrNoProfile = errors.New("history: no saved profile")

// Store persists interview records and the candidate profile. ListAll
// returns newest first.
type Store interface {
	Append(ctx context.Context, rec Record) error
	ListAll(ctx context.Context) ([]Record, error)
	ClearAll(ctx context.Context) error

	SaveProfile(ctx context.Context, p Profile) error
	LoadProfile(ctx context.Context) (Profile, error)
	ClearProfile(ctx context.Context) error
}
