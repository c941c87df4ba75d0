package speech

import (
	"log"
	"sync"
)

// Browser speech bridge. The connected browser performs the platform's
// native recognition/synthesis and relays events over the session
// WebSocket; these adapters translate between that wire protocol and the
// Recognizer/Synthesizer contracts.

// Command is an outbound instruction to the browser's speech layer.
type Command struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	// Utterance matches speech completion events back to the Speak call
	// that issued them.
	Utterance int `json:"utterance,omitempty"`
}

const (
	cmdListenStart = "listen-start"
	cmdListenStop  = "listen-stop"
	cmdListenAbort = "listen-abort"
	cmdSpeak       = "speak"
	cmdSpeakCancel = "speak-cancel"
	cmdUnlockAudio = "unlock-audio"
)

// Inbound event types reported by the browser.
const (
	EvtRecognitionStart   = "recognition-start"
	EvtRecognitionInterim = "recognition-interim"
	EvtRecognitionResult  = "recognition-result"
	EvtRecognitionEnd     = "recognition-end"
	EvtRecognitionError   = "recognition-error"
	EvtSpeechEnd          = "speech-end"
	EvtSpeechError        = "speech-error"
)

// SendFunc delivers one JSON command to the browser.
type SendFunc func(v any) error

// BrowserRecognizer implements Recognizer over the bridge protocol.
type BrowserRecognizer struct {
	send SendFunc
	ev   RecognizerEvents

	mu     sync.Mutex
	active bool
}

// NewBrowserRecognizer wires a recognizer to an outbound send function and
// host callbacks.
func NewBrowserRecognizer(send SendFunc, ev RecognizerEvents) *BrowserRecognizer {
	return &BrowserRecognizer{send: send, ev: ev}
}

func (r *BrowserRecognizer) Start() error {
	return r.send(Command{Type: cmdListenStart})
}

func (r *BrowserRecognizer) Stop() {
	if err := r.send(Command{Type: cmdListenStop}); err != nil {
		log.Printf("bridge: listen-stop send failed: %v", err)
	}
}

func (r *BrowserRecognizer) Abort() {
	if err := r.send(Command{Type: cmdListenAbort}); err != nil {
		log.Printf("bridge: listen-abort send failed: %v", err)
	}
}

// Active reports whether the browser last reported recognition running.
func (r *BrowserRecognizer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// HandleEvent dispatches one inbound browser event. Unknown types are
// logged and ignored.
func (r *BrowserRecognizer) HandleEvent(evtType, text string) {
	switch evtType {
	case EvtRecognitionStart:
		r.mu.Lock()
		r.active = true
		r.mu.Unlock()
		if r.ev.OnStart != nil {
			r.ev.OnStart()
		}
	case EvtRecognitionInterim:
		if r.ev.OnInterim != nil {
			r.ev.OnInterim(text)
		}
	case EvtRecognitionResult:
		if r.ev.OnResult != nil {
			r.ev.OnResult(text)
		}
	case EvtRecognitionEnd:
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
		if r.ev.OnEnd != nil {
			r.ev.OnEnd()
		}
	case EvtRecognitionError:
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
		if r.ev.OnError != nil {
			r.ev.OnError(text)
		}
	default:
		log.Printf("bridge: unknown recognition event %q", evtType)
	}
}

var _ Recognizer = (*BrowserRecognizer)(nil)

// BrowserSynthesizer implements Synthesizer over the bridge protocol. Each
// Speak call gets a fresh utterance id; completion events for any other id
// are discarded, so a cancelled utterance can never complete late.
type BrowserSynthesizer struct {
	send SendFunc

	mu         sync.Mutex
	gen        int
	speaking   bool
	onComplete func()
}

// NewBrowserSynthesizer wires a synthesizer to an outbound send function.
func NewBrowserSynthesizer(send SendFunc) *BrowserSynthesizer {
	return &BrowserSynthesizer{send: send}
}

func (s *BrowserSynthesizer) Speak(text string, onComplete func()) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.speaking = true
	s.onComplete = onComplete
	s.mu.Unlock()

	// The browser side cancels any in-flight utterance before starting a
	// new one, mirroring the speak-cancels-current contract.
	if err := s.send(Command{Type: cmdSpeak, Text: text, Utterance: gen}); err != nil {
		log.Printf("bridge: speak send failed: %v", err)
		s.complete(gen)
	}
}

func (s *BrowserSynthesizer) Cancel() {
	s.mu.Lock()
	// Bump the generation synchronously so a completion event from the
	// cancelled utterance arriving later is discarded.
	s.gen++
	s.speaking = false
	s.onComplete = nil
	s.mu.Unlock()
	if err := s.send(Command{Type: cmdSpeakCancel}); err != nil {
		log.Printf("bridge: speak-cancel send failed: %v", err)
	}
}

func (s *BrowserSynthesizer) Unlock() {
	if err := s.send(Command{Type: cmdUnlockAudio}); err != nil {
		log.Printf("bridge: unlock-audio send failed: %v", err)
	}
}

// Speaking reports whether an utterance is in flight.
func (s *BrowserSynthesizer) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// HandleEvent dispatches one inbound speech event for utterance id utt.
// End and error both release the speaking state; callers rely on the
// completion firing either way.
func (s *BrowserSynthesizer) HandleEvent(evtType string, utt int) {
	switch evtType {
	case EvtSpeechEnd, EvtSpeechError:
		s.complete(utt)
	default:
		log.Printf("bridge: unknown speech event %q", evtType)
	}
}

func (s *BrowserSynthesizer) complete(utt int) {
	s.mu.Lock()
	if utt != s.gen || !s.speaking {
		s.mu.Unlock()
		return
	}
	cb := s.onComplete
	s.speaking = false
	s.onComplete = nil
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

var _ Synthesizer = (*BrowserSynthesizer)(nil)
