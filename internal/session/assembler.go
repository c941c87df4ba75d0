package session

import (
	"context"
	"time"

	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
	"github.com/VaioMishra/Product-Manager-AI/internal/history"
	"github.com/VaioMishra/Product-Manager-AI/internal/transcript"
)

// Assembler turns a finished transcript into feedback and, when the
// assessment succeeds, a persistable history record. A nil assessment
// never produces a record.
type Assembler struct {
	dlg dialogue.Client
	// now is swappable in tests; record IDs are timestamps.
	now func() time.Time
}

func NewAssembler(dlg dialogue.Client) *Assembler {
	return &Assembler{dlg: dlg, now: time.Now}
}

// Finalize requests the assessment for a rendered conversation and
// builds the record from the finalized entries. It returns (nil, nil)
// when the assessment fails; the session still reaches its feedback
// state in that case, it just has nothing to persist.
func (a *Assembler) Finalize(ctx context.Context, cfg Config, rendered string, entries []transcript.Entry) (*dialogue.Assessment, *history.Record) {
	topic := cfg.Question
	if cfg.Kind == KindFull {
		topic = string(cfg.Category)
	}
	assessment := a.dlg.Assess(ctx, topic, rendered, cfg.Profile, cfg.Category)
	if assessment == nil {
		return nil, nil
	}

	ts := a.now().UTC()
	rec := &history.Record{
		ID:         ts.Format(time.RFC3339Nano),
		Kind:       string(cfg.Kind),
		Date:       ts.Format(time.RFC3339),
		Category:   string(cfg.Category),
		Topic:      cfg.Question,
		Transcript: entries,
		Feedback:   *assessment,
	}
	return assessment, rec
}
