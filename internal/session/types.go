package session

import (
	"time"

	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
	"github.com/VaioMishra/Product-Manager-AI/internal/history"
	"github.com/VaioMishra/Product-Manager-AI/internal/transcript"
)

// State is the single active session state, owned exclusively by the
// Controller.
type State string

const (
	StateAwaitingResumeOrSkip State = "awaiting_resume_or_skip"
	StateProfileReady         State = "profile_ready"
	StateIntroAcknowledged    State = "intro_acknowledged"
	StateInterviewing         State = "interviewing"
	StateGeneratingFeedback   State = "generating_feedback"
	StateFeedbackReady        State = "feedback_ready"
)

// VoiceState is derived from the two speech adapters. Speaking and
// listening are mutually exclusive; starting one stops the other first.
type VoiceState string

const (
	VoiceIdle      VoiceState = "idle"
	VoiceListening VoiceState = "listening"
	VoiceSpeaking  VoiceState = "speaking"
)

// Kind selects the session flavor.
type Kind string

const (
	KindPractice Kind = "practice"
	KindFull     Kind = "full"
)

// Timing defaults for the full-interview countdown.
const (
	DefaultTotalSeconds   = 2700
	DefaultWarningSecond  = 300
	DefaultFinalTickAfter = 10
	DefaultSilenceTimeout = 2 * time.Second
)

// Cue kinds fired by the timer supervisor.
const (
	CueWarning = "warning"
	CueTick    = "tick"
)

// Config fixes a session's flavor and thresholds. Zero timing fields take
// the defaults above; TickInterval exists so tests can compress time.
type Config struct {
	Kind     Kind
	Profile  dialogue.Profile
	Category dialogue.Category
	// Question is the selected prompt in practice mode.
	Question string
	// FallbackPool is the generic full-interview question pool used when
	// no resume was analyzed.
	FallbackPool []string

	TotalSeconds   int
	WarningSecond  int
	FinalTickAfter int
	SilenceTimeout time.Duration
	TickInterval   time.Duration
}

func (c Config) withDefaults() Config {
	if c.TotalSeconds == 0 {
		c.TotalSeconds = DefaultTotalSeconds
	}
	if c.WarningSecond == 0 {
		c.WarningSecond = DefaultWarningSecond
	}
	if c.FinalTickAfter == 0 {
		c.FinalTickAfter = DefaultFinalTickAfter
	}
	if c.SilenceTimeout == 0 {
		c.SilenceTimeout = DefaultSilenceTimeout
	}
	if c.TickInterval == 0 {
		c.TickInterval = time.Second
	}
	return c
}

// Events carries session output to the host (the WebSocket layer or a
// test). Callbacks are invoked outside the controller's lock and must not
// be nil-checked by callers; nil members are simply skipped.
type Events struct {
	OnState      func(State)
	OnVoice      func(VoiceState)
	OnTranscript func(entries []transcript.Entry)
	// OnStage reports the practice-mode rubric stage (0-4).
	OnStage func(stage int)
	// OnTimer reports seconds remaining, once per countdown tick.
	OnTimer func(remaining int)
	// OnCue fires the one-shot warning and the repeating final-seconds
	// tick.
	OnCue func(kind string)
	// OnNotice surfaces user-visible messages (permission failures,
	// resume rejections, retry prompts).
	OnNotice func(msg string)
	// OnFeedback fires exactly once per run; nil means the assessment
	// failed and the feedback view shows its error state.
	OnFeedback func(a *dialogue.Assessment)
	// OnRecord fires at most once per run, only when assessment
	// succeeded; the host persists the record.
	OnRecord func(rec history.Record)
}

// User-visible message copy. The controller is the single place deciding
// these, per the adapter error propagation policy.
const (
	msgMicRequired     = "Microphone access is required. Please grant permission and try again."
	msgResumeRejected  = "The uploaded file doesn't appear to be a resume. Please upload a valid document or continue with a general interview."
	msgResumeFailed    = "Sorry, there was an error analyzing your resume. Please try a different file or try again later."
	msgResumeTooLarge  = "File is too large. Please upload a resume under 10MB."
	msgResumeBadType   = "Unsupported file type. Please upload a PDF or Word document."
	msgTurnFailed      = "I'm sorry, I encountered an error. Could you please rephrase your response?"
	msgNoSpeech        = "I didn't catch that. Please try speaking again."
	msgRecognitionDown = "Speech recognition ran into a problem. You can keep typing your answers."
)

// maxResumeBytes caps uploaded resume documents at 10MB.
const maxResumeBytes = 10 * 1024 * 1024
