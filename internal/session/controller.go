package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
	"github.com/VaioMishra/Product-Manager-AI/internal/speech"
	"github.com/VaioMishra/Product-Manager-AI/internal/transcript"
)

// resumeMimeTypes are the document types the analyzer accepts.
var resumeMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// actions are callbacks collected under the controller lock and run after
// it is released, so adapters and event handlers never re-enter a held
// mutex.
type actions []func()

func (a *actions) add(f func()) {
	if f != nil {
		*a = append(*a, f)
	}
}

func (a actions) run() {
	for _, f := range a {
		f()
	}
}

// Controller owns one interview session: its state machine, transcript,
// voice orchestration, clock, and finalization. Every external input goes
// through a method that serializes under one mutex, so handlers observe a
// consistent session and concurrent events cannot interleave mid-decision.
type Controller struct {
	id  string
	cfg Config
	dlg dialogue.Client
	asm *Assembler
	ev  Events

	mu         sync.Mutex
	rec        speech.Recognizer
	syn        speech.Synthesizer
	state      State
	voice      VoiceState
	tr         *transcript.Transcript
	pool       []string
	summary    string
	stage      int
	replyCount int
	inFlight   bool
	resumeBusy bool
	run        int
	countdown  *Countdown
	silence    *time.Timer
	closed     bool
}

// New builds a controller in its initial state. Speech adapters attach
// separately because the recognizer needs the controller's event handlers
// first.
func New(cfg Config, dlg dialogue.Client, ev Events) *Controller {
	return &Controller{
		id:    uuid.NewString(),
		cfg:   cfg.withDefaults(),
		dlg:   dlg,
		asm:   NewAssembler(dlg),
		ev:    ev,
		state: StateAwaitingResumeOrSkip,
		voice: VoiceIdle,
		tr:    transcript.New(),
	}
}

// ID returns the session's identifier.
func (c *Controller) ID() string { return c.id }

// AttachSpeech wires the speech adapters. Either may be nil, in which
// case the corresponding capability is simply not offered and the session
// runs text-only.
func (c *Controller) AttachSpeech(rec speech.Recognizer, syn speech.Synthesizer) {
	c.mu.Lock()
	c.rec = rec
	c.syn = syn
	c.mu.Unlock()
}

// RecognizerEvents returns the callback set a recognizer should be
// constructed with.
func (c *Controller) RecognizerEvents() speech.RecognizerEvents {
	return speech.RecognizerEvents{
		OnResult:  c.SubmitUtterance,
		OnInterim: c.handleInterim,
		OnStart:   c.handleRecognitionStart,
		OnEnd:     c.handleRecognitionEnd,
		OnError:   c.handleRecognitionError,
	}
}

// Snapshot is the controller's externally visible state, used to seed a
// freshly connected client.
type Snapshot struct {
	State   State              `json:"state"`
	Voice   VoiceState         `json:"voice"`
	Entries []transcript.Entry `json:"transcript"`
	Stage   int                `json:"stage"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Voice: c.voice, Entries: c.tr.Entries(), Stage: c.stage}
}

// SubmitResume hands an uploaded document to the analyzer. Only valid in
// the initial state; oversized files are rejected before any remote call.
func (c *Controller) SubmitResume(mimeType string, data []byte) {
	var out actions
	c.mu.Lock()
	switch {
	case c.state != StateAwaitingResumeOrSkip || c.resumeBusy:
	case len(data) > maxResumeBytes:
		c.noticeLocked(&out, msgResumeTooLarge)
	case !resumeMimeTypes[mimeType]:
		c.noticeLocked(&out, msgResumeBadType)
	default:
		c.resumeBusy = true
		profile := c.cfg.Profile
		run := c.run
		out.add(func() {
			go func() {
				res, err := c.dlg.AnalyzeResume(context.Background(), mimeType, data, profile)
				c.resumeDone(run, res, err)
			}()
		})
	}
	c.mu.Unlock()
	out.run()
}

func (c *Controller) resumeDone(run int, res dialogue.ResumeAnalysis, err error) {
	var out actions
	c.mu.Lock()
	if run != c.run {
		c.mu.Unlock()
		return
	}
	c.resumeBusy = false
	switch {
	case c.closed || c.state != StateAwaitingResumeOrSkip:
	case err != nil:
		log.Printf("session %s: resume analysis failed: %v", c.id, err)
		c.noticeLocked(&out, msgResumeFailed)
	case !res.IsValidDocument:
		c.noticeLocked(&out, msgResumeRejected)
	default:
		c.summary = res.ProfileSummary
		c.pool = res.Questions
		c.stateLocked(&out, StateProfileReady)
	}
	c.mu.Unlock()
	out.run()
}

// SkipResume advances without a document, falling back to the generic
// question pool.
func (c *Controller) SkipResume() {
	var out actions
	c.mu.Lock()
	if c.state == StateAwaitingResumeOrSkip && !c.resumeBusy {
		c.summary = genericSummary(c.cfg.Profile)
		if c.cfg.Kind == KindPractice {
			c.pool = []string{c.cfg.Question}
		} else {
			c.pool = c.cfg.FallbackPool
		}
		c.stateLocked(&out, StateProfileReady)
	}
	c.mu.Unlock()
	out.run()
}

// Start acknowledges the session intro. The transition requires the
// microphone unless the session has no recognizer at all.
func (c *Controller) Start(micGranted bool) {
	var out actions
	c.mu.Lock()
	if c.state == StateProfileReady {
		if c.rec != nil && !micGranted {
			c.noticeLocked(&out, msgMicRequired)
		} else {
			if syn := c.syn; syn != nil {
				// User gesture: unlock audio while we still ride on it.
				out.add(syn.Unlock)
			}
			c.stateLocked(&out, StateIntroAcknowledged)
		}
	}
	c.mu.Unlock()
	out.run()
}

// Begin moves into the live interview: it seeds the opening line, starts
// the clock, and in full-interview mode speaks the greeting. Permission
// is re-checked because it can be revoked between acknowledgment and
// start.
func (c *Controller) Begin(micGranted bool) {
	var out actions
	c.mu.Lock()
	if c.state == StateIntroAcknowledged {
		if c.rec != nil && !micGranted {
			c.noticeLocked(&out, msgMicRequired)
		} else {
			c.stateLocked(&out, StateInterviewing)
			opening := c.openingLine()
			c.tr.AppendInterviewer(opening)
			c.transcriptLocked(&out)
			c.startCountdownLocked()
			if c.cfg.Kind == KindFull {
				c.speakLocked(&out, opening)
			}
		}
	}
	c.mu.Unlock()
	out.run()
}

// genericSummary stands in for a resume-derived summary when none exists.
func genericSummary(p dialogue.Profile) string {
	return fmt.Sprintf("%s is a product manager candidate with %d years of experience. No resume was provided; conduct a general product management interview appropriate for that experience level.",
		p.CandidateName, p.YearsOfExperience)
}

func (c *Controller) openingLine() string {
	if c.cfg.Kind == KindPractice {
		return c.cfg.Question
	}
	name := c.cfg.Profile.CandidateName
	if name == "" {
		name = "there"
	}
	return "Hello " + name + "! Thanks for joining me today. We'll run through a full product management interview together. Whenever you're ready, say hello and we'll get started."
}

func (c *Controller) startCountdownLocked() {
	c.countdown = NewCountdown(c.cfg.TotalSeconds, c.cfg.WarningSecond, c.cfg.FinalTickAfter, c.cfg.TickInterval, CountdownEvents{
		OnTick: func(remaining int) {
			if cb := c.ev.OnTimer; cb != nil {
				cb(remaining)
			}
		},
		OnWarning: func() {
			if cb := c.ev.OnCue; cb != nil {
				cb(CueWarning)
			}
		},
		OnFinalTick: func(int) {
			if cb := c.ev.OnCue; cb != nil {
				cb(CueTick)
			}
		},
		OnExpire: c.End,
	})
	c.countdown.Start()
}

// SubmitUtterance feeds one finalized candidate utterance into the turn
// cycle, whether it came from recognition or typing. At most one turn is
// in flight; input during a pending turn is dropped.
func (c *Controller) SubmitUtterance(text string) {
	text = strings.TrimSpace(text)
	var out actions
	c.mu.Lock()
	c.stopSilenceLocked()
	if c.state != StateInterviewing || c.inFlight || text == "" {
		c.mu.Unlock()
		out.run()
		return
	}
	if c.voice == VoiceSpeaking {
		// Typing over a playing reply makes the reply stale.
		if syn := c.syn; syn != nil {
			out.add(syn.Cancel)
		}
		c.voiceLocked(&out, VoiceIdle)
	}
	c.tr.AppendUser(text)
	if err := c.tr.BeginPending(); err != nil {
		log.Printf("session %s: begin pending: %v", c.id, err)
	}
	c.inFlight = true
	c.transcriptLocked(&out)

	hist := c.tr.Finalized()
	summary, pool := c.summary, c.pool
	run := c.run
	out.add(func() { go c.turn(run, hist, summary, pool) })
	c.mu.Unlock()
	out.run()
}

func (c *Controller) turn(run int, hist []transcript.Entry, summary string, pool []string) {
	ctx := context.Background()
	var (
		reply string
		stage int
		err   error
	)
	if c.cfg.Kind == KindFull {
		reply, err = c.dlg.NextFullInterviewTurn(ctx, hist, c.cfg.Profile, summary, pool)
	} else {
		var tr dialogue.TurnReply
		tr, err = c.dlg.NextTurn(ctx, hist, c.cfg.Question, c.cfg.Profile, c.cfg.Category)
		reply, stage = tr.ReplyText, tr.StageIndex
	}
	c.finishTurn(run, reply, stage, err)
}

func (c *Controller) finishTurn(run int, reply string, stage int, err error) {
	var out actions
	c.mu.Lock()
	// A restart invalidates in-flight turns from the previous run; their
	// replies must not touch the new session's transcript or stage.
	if c.closed || run != c.run {
		c.mu.Unlock()
		return
	}
	c.inFlight = false
	if err != nil {
		log.Printf("session %s: turn failed: %v", c.id, err)
		reply = msgTurnFailed
	}
	if c.tr.HasPending() {
		if rerr := c.tr.ResolvePending(reply); rerr != nil {
			log.Printf("session %s: resolve pending: %v", c.id, rerr)
		}
	}
	c.replyCount++
	if err == nil && c.cfg.Kind == KindPractice {
		if st := dialogue.ClampStage(stage); st != c.stage {
			c.stage = st
			if cb := c.ev.OnStage; cb != nil {
				out.add(func() { cb(st) })
			}
		}
	}
	c.transcriptLocked(&out)
	if c.state == StateInterviewing && c.shouldSpeakReplyLocked() {
		c.speakLocked(&out, reply)
	}
	c.mu.Unlock()
	out.run()
}

// shouldSpeakReplyLocked holds the practice-mode quirk: the very first
// reply after the scripted question is shown, not narrated.
func (c *Controller) shouldSpeakReplyLocked() bool {
	if c.syn == nil {
		return false
	}
	if c.cfg.Kind == KindPractice && c.replyCount == 1 {
		return false
	}
	return true
}

func (c *Controller) speakLocked(out *actions, text string) {
	if c.syn == nil {
		return
	}
	if c.voice == VoiceListening {
		if rec := c.rec; rec != nil {
			out.add(rec.Abort)
		}
	}
	c.voiceLocked(out, VoiceSpeaking)
	syn := c.syn
	out.add(func() { syn.Speak(text, c.speechDone) })
}

func (c *Controller) speechDone() {
	var out actions
	c.mu.Lock()
	if c.voice == VoiceSpeaking {
		c.voiceLocked(&out, VoiceIdle)
	}
	c.mu.Unlock()
	out.run()
}

// ToggleListening is the mic control. Pressing it while the interviewer
// is speaking interrupts the speech and opens the mic; pressing it while
// listening stops capture, letting any caught speech finalize.
func (c *Controller) ToggleListening() {
	var out actions
	c.mu.Lock()
	if c.state != StateInterviewing || c.rec == nil {
		c.mu.Unlock()
		return
	}
	rec := c.rec
	switch c.voice {
	case VoiceListening:
		out.add(rec.Stop)
	case VoiceSpeaking:
		if syn := c.syn; syn != nil {
			out.add(syn.Cancel)
		}
		c.voiceLocked(&out, VoiceIdle)
		out.add(func() { c.startListening(rec) })
	default:
		out.add(func() { c.startListening(rec) })
	}
	c.mu.Unlock()
	out.run()
}

func (c *Controller) startListening(rec speech.Recognizer) {
	if err := rec.Start(); err != nil {
		log.Printf("session %s: recognizer start failed: %v", c.id, err)
	}
}

func (c *Controller) handleRecognitionStart() {
	var out actions
	c.mu.Lock()
	if c.voice == VoiceSpeaking {
		if syn := c.syn; syn != nil {
			out.add(syn.Cancel)
		}
	}
	c.voiceLocked(&out, VoiceListening)
	c.mu.Unlock()
	out.run()
}

func (c *Controller) handleInterim(string) {
	c.mu.Lock()
	if c.voice == VoiceListening {
		c.resetSilenceLocked()
	}
	c.mu.Unlock()
}

func (c *Controller) handleRecognitionEnd() {
	var out actions
	c.mu.Lock()
	c.stopSilenceLocked()
	if c.voice == VoiceListening {
		c.voiceLocked(&out, VoiceIdle)
	}
	c.mu.Unlock()
	out.run()
}

func (c *Controller) handleRecognitionError(reason string) {
	var out actions
	c.mu.Lock()
	c.stopSilenceLocked()
	if c.voice == VoiceListening {
		c.voiceLocked(&out, VoiceIdle)
	}
	switch reason {
	case speech.ReasonPermissionDenied:
		c.noticeLocked(&out, msgMicRequired)
	case speech.ReasonNoSpeech:
		c.noticeLocked(&out, msgNoSpeech)
	case speech.ReasonNetwork, speech.ReasonAudioCapture:
		c.noticeLocked(&out, msgRecognitionDown)
	case speech.ReasonAborted:
		// Deliberate abort, nothing to report.
	default:
		log.Printf("session %s: recognition error %q", c.id, reason)
	}
	c.mu.Unlock()
	out.run()
}

// resetSilenceLocked re-arms the auto-stop that closes the mic after the
// candidate trails off.
func (c *Controller) resetSilenceLocked() {
	if c.silence != nil {
		c.silence.Stop()
	}
	c.silence = time.AfterFunc(c.cfg.SilenceTimeout, c.silenceExpired)
}

func (c *Controller) stopSilenceLocked() {
	if c.silence != nil {
		c.silence.Stop()
		c.silence = nil
	}
}

func (c *Controller) silenceExpired() {
	var out actions
	c.mu.Lock()
	c.silence = nil
	if c.voice == VoiceListening {
		if rec := c.rec; rec != nil {
			out.add(rec.Stop)
		}
	}
	c.mu.Unlock()
	out.run()
}

// End finishes the interview, from the end button and the expired clock
// alike. The state guard makes it idempotent: whichever caller arrives
// second sees a session already past Interviewing and returns without a
// second finalization.
func (c *Controller) End() {
	var out actions
	c.mu.Lock()
	if c.state != StateInterviewing {
		c.mu.Unlock()
		return
	}
	c.stateLocked(&out, StateGeneratingFeedback)
	c.teardownLocked(&out)

	// Snapshot under the lock; a still-in-flight turn may mutate the
	// transcript after this point and must not leak into the feedback.
	rendered := c.tr.Render(c.cfg.Profile.CandidateName)
	entries := c.tr.Finalized()
	out.add(func() { go c.finalize(rendered, entries) })
	c.mu.Unlock()
	out.run()
}

func (c *Controller) finalize(rendered string, entries []transcript.Entry) {
	assessment, rec := c.asm.Finalize(context.Background(), c.cfg, rendered, entries)

	var out actions
	c.mu.Lock()
	if c.closed || c.state != StateGeneratingFeedback {
		c.mu.Unlock()
		return
	}
	c.stateLocked(&out, StateFeedbackReady)
	if rec != nil {
		if cb := c.ev.OnRecord; cb != nil {
			r := *rec
			out.add(func() { cb(r) })
		}
	}
	if cb := c.ev.OnFeedback; cb != nil {
		out.add(func() { cb(assessment) })
	}
	c.mu.Unlock()
	out.run()
}

// Restart begins a fresh run after feedback: new transcript, new clock,
// back to the initial state.
func (c *Controller) Restart() {
	var out actions
	c.mu.Lock()
	if c.state == StateFeedbackReady {
		c.run++
		c.tr = transcript.New()
		c.stage = 0
		c.replyCount = 0
		c.pool = nil
		c.summary = ""
		c.inFlight = false
		c.resumeBusy = false
		c.countdown = nil
		c.stateLocked(&out, StateAwaitingResumeOrSkip)
		c.transcriptLocked(&out)
		if cb := c.ev.OnStage; cb != nil {
			out.add(func() { cb(0) })
		}
	}
	c.mu.Unlock()
	out.run()
}

// Close releases the session's resources. The controller accepts no
// further input afterwards.
func (c *Controller) Close() {
	var out actions
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.teardownLocked(&out)
	}
	c.mu.Unlock()
	out.run()
}

func (c *Controller) teardownLocked(out *actions) {
	c.stopSilenceLocked()
	if c.countdown != nil {
		c.countdown.Stop()
	}
	if syn := c.syn; syn != nil {
		out.add(syn.Cancel)
	}
	if rec := c.rec; rec != nil {
		out.add(rec.Abort)
	}
	c.voiceLocked(out, VoiceIdle)
}

func (c *Controller) stateLocked(out *actions, s State) {
	c.state = s
	if cb := c.ev.OnState; cb != nil {
		out.add(func() { cb(s) })
	}
}

func (c *Controller) voiceLocked(out *actions, v VoiceState) {
	if c.voice == v {
		return
	}
	c.voice = v
	if cb := c.ev.OnVoice; cb != nil {
		out.add(func() { cb(v) })
	}
}

func (c *Controller) transcriptLocked(out *actions) {
	if cb := c.ev.OnTranscript; cb != nil {
		entries := c.tr.Entries()
		out.add(func() { cb(entries) })
	}
}

func (c *Controller) noticeLocked(out *actions, msg string) {
	if cb := c.ev.OnNotice; cb != nil {
		out.add(func() { cb(msg) })
	}
}
