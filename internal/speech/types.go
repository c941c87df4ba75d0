package speech

// Error reason tags surfaced by recognizers. The session controller maps
// them to user-visible behavior; adapters never decide UI copy.
const (
	ReasonPermissionDenied = "permission-denied"
	ReasonNoSpeech         = "no-speech"
	ReasonNetwork          = "network"
	ReasonAudioCapture     = "audio-capture"
	ReasonAborted          = "aborted"
)

// RecognizerEvents carries speech-recognition callbacks into the host.
// Adapters surface failures only through OnError, never by panicking or
// swallowing them.
type RecognizerEvents struct {
	// OnResult fires with a finalized utterance.
	OnResult func(text string)
	// OnInterim fires with running non-final transcript text; the host
	// uses it to drive its silence timeout.
	OnInterim func(text string)
	OnStart   func()
	OnEnd     func()
	// OnError fires with one of the Reason tags above.
	OnError func(reason string)
}

// Recognizer wraps a speech-to-text capability. A nil Recognizer means the
// platform lacks support and voice input is simply not offered.
type Recognizer interface {
	// Start begins capturing audio.
	Start() error
	// Stop ends capture; captured speech still yields OnResult.
	Stop()
	// Abort ends capture immediately and discards any non-final
	// transcript. Safe to call when nothing is listening.
	Abort()
}

// Synthesizer wraps a text-to-speech capability.
//
// Speak cancels any currently playing utterance first, then speaks text to
// completion, invoking onComplete exactly once, on natural completion and
// on error alike. Cancel stops immediately and blocks the cancelled
// utterance's onComplete from ever firing; it is a no-op when nothing is
// speaking. Unlock is idempotent and safe to call on every user gesture,
// for platforms gating audio behind an interaction.
type Synthesizer interface {
	Speak(text string, onComplete func())
	Cancel()
	Unlock()
}
