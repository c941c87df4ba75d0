package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
	"github.com/VaioMishra/Product-Manager-AI/internal/history"
	"github.com/VaioMishra/Product-Manager-AI/internal/transcript"
)

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

type fakeDialogue struct {
	mu          sync.Mutex
	reply       dialogue.TurnReply
	fullReply   string
	turnErr     error
	assessment  *dialogue.Assessment
	resume      dialogue.ResumeAnalysis
	resumeErr   error
	turnCalls   int
	assessCalls int
	// gate, when set, holds turn generation until released.
	gate chan struct{}
}

func (f *fakeDialogue) NextTurn(_ context.Context, _ []transcript.Entry, _ string, _ dialogue.Profile, _ dialogue.Category) (dialogue.TurnReply, error) {
	f.mu.Lock()
	f.turnCalls++
	gate := f.gate
	reply, err := f.reply, f.turnErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return reply, err
}

func (f *fakeDialogue) NextFullInterviewTurn(_ context.Context, _ []transcript.Entry, _ dialogue.Profile, _ string, _ []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turnCalls++
	return f.fullReply, f.turnErr
}

func (f *fakeDialogue) Assess(_ context.Context, _, _ string, _ dialogue.Profile, _ dialogue.Category) *dialogue.Assessment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assessCalls++
	return f.assessment
}

func (f *fakeDialogue) FrameworkExplanation(_ context.Context, _ string, _ dialogue.Category) (string, error) {
	return "", nil
}

func (f *fakeDialogue) SampleAnswer(_ context.Context, _ string, _ dialogue.Profile, _ dialogue.Category) (string, error) {
	return "", nil
}

func (f *fakeDialogue) AnalyzeResume(_ context.Context, _ string, _ []byte, _ dialogue.Profile) (dialogue.ResumeAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resume, f.resumeErr
}

func (f *fakeDialogue) counts() (turns, assessments int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.turnCalls, f.assessCalls
}

type fakeRecognizer struct {
	mu       sync.Mutex
	startErr error
	starts   int
	stops    int
	aborts   int
}

func (r *fakeRecognizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	return r.startErr
}

func (r *fakeRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
}

func (r *fakeRecognizer) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborts++
}

func (r *fakeRecognizer) counts() (starts, stops, aborts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts, r.stops, r.aborts
}

type fakeSynth struct {
	mu       sync.Mutex
	spoken   []string
	cancels  int
	complete func()
}

func (s *fakeSynth) Speak(text string, onComplete func()) {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.complete = onComplete
	s.mu.Unlock()
}

func (s *fakeSynth) Cancel() {
	s.mu.Lock()
	s.cancels++
	s.complete = nil
	s.mu.Unlock()
}

func (s *fakeSynth) Unlock() {}

func (s *fakeSynth) finish() {
	s.mu.Lock()
	cb := s.complete
	s.complete = nil
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (s *fakeSynth) spokenTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}

func (s *fakeSynth) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

type recorder struct {
	mu       sync.Mutex
	states   []State
	voices   []VoiceState
	latest   []transcript.Entry
	stages   []int
	notices  []string
	cues     []string
	feedback []*dialogue.Assessment
	records  []history.Record
}

func (r *recorder) events() Events {
	return Events{
		OnState: func(s State) {
			r.mu.Lock()
			r.states = append(r.states, s)
			r.mu.Unlock()
		},
		OnVoice: func(v VoiceState) {
			r.mu.Lock()
			r.voices = append(r.voices, v)
			r.mu.Unlock()
		},
		OnTranscript: func(entries []transcript.Entry) {
			r.mu.Lock()
			r.latest = entries
			r.mu.Unlock()
		},
		OnStage: func(stage int) {
			r.mu.Lock()
			r.stages = append(r.stages, stage)
			r.mu.Unlock()
		},
		OnCue: func(kind string) {
			r.mu.Lock()
			r.cues = append(r.cues, kind)
			r.mu.Unlock()
		},
		OnNotice: func(msg string) {
			r.mu.Lock()
			r.notices = append(r.notices, msg)
			r.mu.Unlock()
		},
		OnFeedback: func(a *dialogue.Assessment) {
			r.mu.Lock()
			r.feedback = append(r.feedback, a)
			r.mu.Unlock()
		},
		OnRecord: func(rec history.Record) {
			r.mu.Lock()
			r.records = append(r.records, rec)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) lastState() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return ""
	}
	return r.states[len(r.states)-1]
}

func (r *recorder) entries() []transcript.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

func (r *recorder) noticeList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	copy(out, r.notices)
	return out
}

func (r *recorder) feedbackList() []*dialogue.Assessment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*dialogue.Assessment(nil), r.feedback...)
}

func (r *recorder) recordList() []history.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]history.Record(nil), r.records...)
}

func (r *recorder) stageList() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.stages...)
}

func practiceConfig() Config {
	return Config{
		Kind:     KindPractice,
		Question: "How would you improve Google Maps for daily commuters?",
		Category: dialogue.CategoryProductSense,
		Profile:  dialogue.Profile{CandidateName: "Asha", YearsOfExperience: 5},
		// Effectively frozen clock; countdown behavior has its own tests.
		TickInterval: time.Hour,
	}
}

func fullConfig() Config {
	cfg := practiceConfig()
	cfg.Kind = KindFull
	cfg.Question = ""
	cfg.Category = dialogue.CategoryFullInterview
	cfg.FallbackPool = []string{"Tell me about a product you admire."}
	return cfg
}

// interviewing drives a controller through onboarding into the live
// interview.
func interviewing(t *testing.T, cfg Config, dlg dialogue.Client, rec *fakeRecognizer, syn *fakeSynth, recd *recorder) *Controller {
	t.Helper()
	ctl := New(cfg, dlg, recd.events())
	switch {
	case rec != nil && syn != nil:
		ctl.AttachSpeech(rec, syn)
	case rec != nil:
		ctl.AttachSpeech(rec, nil)
	case syn != nil:
		ctl.AttachSpeech(nil, syn)
	}
	ctl.SkipResume()
	ctl.Start(true)
	ctl.Begin(true)
	if got := ctl.Snapshot().State; got != StateInterviewing {
		t.Fatalf("expected interviewing state after begin, got %q", got)
	}
	return ctl
}

func TestPracticeTurnCycle(t *testing.T) {
	gate := make(chan struct{})
	dlg := &fakeDialogue{
		reply: dialogue.TurnReply{ReplyText: "Good start. Who is the primary user?", StageIndex: 1},
		gate:  gate,
	}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, nil, nil, recd)

	ctl.SubmitUtterance("I'd first clarify the goal.")

	entries := recd.entries()
	if len(entries) != 3 {
		t.Fatalf("expected question, answer and placeholder, got %d entries", len(entries))
	}
	if entries[1].Speaker != transcript.SpeakerUser || entries[1].Text != "I'd first clarify the goal." {
		t.Errorf("unexpected user entry: %+v", entries[1])
	}
	if !entries[2].Pending {
		t.Errorf("expected pending placeholder, got %+v", entries[2])
	}

	waitFor(t, "first turn dispatched", func() bool {
		turns, _ := dlg.counts()
		return turns == 1
	})

	// A second utterance while a turn is in flight is dropped.
	ctl.SubmitUtterance("Also, a follow-up thought.")
	if turns, _ := dlg.counts(); turns != 1 {
		t.Fatalf("expected 1 turn call, got %d", turns)
	}

	close(gate)
	waitFor(t, "reply to resolve", func() bool {
		entries := recd.entries()
		return len(entries) == 3 && !entries[2].Pending
	})
	entries = recd.entries()
	if entries[2].Text != "Good start. Who is the primary user?" {
		t.Errorf("placeholder not replaced in place: %+v", entries[2])
	}
	waitFor(t, "stage update", func() bool {
		stages := recd.stageList()
		return len(stages) == 1 && stages[0] == 1
	})
}

func TestTurnFailureFallsBackAndReenablesInput(t *testing.T) {
	dlg := &fakeDialogue{turnErr: errors.New("upstream 500")}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, nil, nil, recd)

	ctl.SubmitUtterance("First answer.")
	waitFor(t, "fallback reply", func() bool {
		entries := recd.entries()
		return len(entries) == 3 && !entries[2].Pending
	})
	if got := recd.entries()[2].Text; got != msgTurnFailed {
		t.Fatalf("expected fallback apology, got %q", got)
	}

	// The gate is released on failure; the next answer goes through.
	ctl.SubmitUtterance("Second answer.")
	waitFor(t, "second turn", func() bool {
		turns, _ := dlg.counts()
		return turns == 2
	})
}

func TestOutOfRangeStageIsIgnored(t *testing.T) {
	dlg := &fakeDialogue{reply: dialogue.TurnReply{ReplyText: "Noted.", StageIndex: 42}}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, nil, nil, recd)

	ctl.SubmitUtterance("Answer.")
	waitFor(t, "reply", func() bool {
		entries := recd.entries()
		return len(entries) == 3 && !entries[2].Pending
	})
	// 42 clamps to 0, which is already the current stage.
	if stages := recd.stageList(); len(stages) != 0 {
		t.Fatalf("expected no stage emission, got %v", stages)
	}
}

func TestFirstPracticeReplyIsNotSpoken(t *testing.T) {
	dlg := &fakeDialogue{reply: dialogue.TurnReply{ReplyText: "Tell me more.", StageIndex: 0}}
	rec := &fakeRecognizer{}
	syn := &fakeSynth{}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, rec, syn, recd)

	if spoken := syn.spokenTexts(); len(spoken) != 0 {
		t.Fatalf("the scripted question must not be narrated, got %v", spoken)
	}

	ctl.SubmitUtterance("First answer.")
	waitFor(t, "first reply", func() bool {
		turns, _ := dlg.counts()
		return turns == 1 && !recd.entries()[len(recd.entries())-1].Pending
	})
	if spoken := syn.spokenTexts(); len(spoken) != 0 {
		t.Fatalf("first reply must not be spoken, got %v", spoken)
	}

	ctl.SubmitUtterance("Second answer.")
	waitFor(t, "second reply spoken", func() bool {
		return len(syn.spokenTexts()) == 1
	})
}

func TestFullInterviewSpeaksOpeningAndInterrupts(t *testing.T) {
	dlg := &fakeDialogue{fullReply: "Great, let's begin. Walk me through your background."}
	rec := &fakeRecognizer{}
	syn := &fakeSynth{}
	recd := &recorder{}
	ctl := interviewing(t, fullConfig(), dlg, rec, syn, recd)

	spoken := syn.spokenTexts()
	if len(spoken) != 1 {
		t.Fatalf("expected the opening line to be spoken, got %v", spoken)
	}
	if ctl.Snapshot().Voice != VoiceSpeaking {
		t.Fatalf("expected speaking voice after opening")
	}

	// Mic press during speech interrupts and opens the mic.
	ctl.ToggleListening()
	if syn.cancelCount() != 1 {
		t.Fatalf("expected speech cancel on interruption, got %d", syn.cancelCount())
	}
	starts, _, _ := rec.counts()
	if starts != 1 {
		t.Fatalf("expected recognition start on interruption, got %d", starts)
	}

	// The browser confirms capture; a finalized utterance drives a turn.
	ev := ctl.RecognizerEvents()
	ev.OnStart()
	if ctl.Snapshot().Voice != VoiceListening {
		t.Fatalf("expected listening voice after recognition start")
	}
	ev.OnResult("Hi, I'm a PM with five years in payments.")
	waitFor(t, "full turn reply spoken", func() bool {
		return len(syn.spokenTexts()) == 2
	})
	if got := syn.spokenTexts()[1]; got != "Great, let's begin. Walk me through your background." {
		t.Errorf("unexpected spoken reply %q", got)
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// The controller records the candidate's utterance before asking for a
// reply, so the remote client must key its warm-up instruction on that
// shape of the history, not on the bare opening line.
func TestFullInterviewFirstTurnAsksWarmUp(t *testing.T) {
	var (
		mu      sync.Mutex
		systems []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SystemInstruction struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"systemInstruction"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		text := ""
		if len(body.SystemInstruction.Parts) > 0 {
			text = body.SystemInstruction.Parts[0].Text
		}
		mu.Lock()
		systems = append(systems, text)
		mu.Unlock()
		resp, _ := json.Marshal(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": "So, tell me a bit about yourself."}}}},
			},
		})
		_, _ = w.Write(resp)
	}))
	defer srv.Close()

	client := dialogue.NewGeminiClient("key", "model")
	client.HTTPClient = &http.Client{Timeout: time.Second, Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		req.URL.Scheme = "http"
		req.URL.Host = srv.Listener.Addr().String()
		return http.DefaultTransport.RoundTrip(req)
	})}

	recd := &recorder{}
	ctl := interviewing(t, fullConfig(), client, nil, nil, recd)

	ctl.SubmitUtterance("Hi, thanks for having me.")
	waitFor(t, "first reply resolved", func() bool {
		entries := recd.entries()
		return len(entries) == 3 && !entries[2].Pending
	})

	ctl.SubmitUtterance("I spent five years on growth products.")
	waitFor(t, "second reply resolved", func() bool {
		entries := recd.entries()
		return len(entries) == 5 && !entries[4].Pending
	})

	mu.Lock()
	defer mu.Unlock()
	if len(systems) != 2 {
		t.Fatalf("expected two dialogue calls, got %d", len(systems))
	}
	if !strings.Contains(systems[0], "warm-up") {
		t.Fatalf("expected warm-up instruction on the first live turn")
	}
	if strings.Contains(systems[1], "warm-up") {
		t.Fatalf("did not expect warm-up instruction on the second turn")
	}
}

func TestListeningToggleStops(t *testing.T) {
	dlg := &fakeDialogue{}
	rec := &fakeRecognizer{}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, rec, nil, recd)

	ctl.ToggleListening()
	ctl.RecognizerEvents().OnStart()
	ctl.ToggleListening()
	_, stops, _ := rec.counts()
	if stops != 1 {
		t.Fatalf("expected one stop, got %d", stops)
	}
	// Stop lets caught speech finalize; the browser then reports end.
	ctl.RecognizerEvents().OnEnd()
	if ctl.Snapshot().Voice != VoiceIdle {
		t.Fatalf("expected idle voice after recognition end")
	}
}

func TestSilenceTimeoutStopsCapture(t *testing.T) {
	cfg := practiceConfig()
	cfg.SilenceTimeout = 10 * time.Millisecond
	dlg := &fakeDialogue{}
	rec := &fakeRecognizer{}
	recd := &recorder{}
	ctl := interviewing(t, cfg, dlg, rec, nil, recd)

	ctl.ToggleListening()
	ev := ctl.RecognizerEvents()
	ev.OnStart()
	ev.OnInterim("I would")
	ev.OnInterim("I would start by")

	waitFor(t, "silence auto-stop", func() bool {
		_, stops, _ := rec.counts()
		return stops == 1
	})
}

func TestRecognitionPermissionErrorNotifies(t *testing.T) {
	dlg := &fakeDialogue{}
	rec := &fakeRecognizer{}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, rec, nil, recd)

	ctl.RecognizerEvents().OnError("permission-denied")
	notices := recd.noticeList()
	if len(notices) != 1 || notices[0] != msgMicRequired {
		t.Fatalf("expected microphone notice, got %v", notices)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	rating := 7.5
	dlg := &fakeDialogue{assessment: &dialogue.Assessment{
		Strengths:     []string{"clear structure"},
		Weaknesses:    []string{"light on metrics"},
		Improvements:  []string{"quantify impact"},
		Scores:        dialogue.Scores{Structure: 8, Creativity: 7, Strategy: 7, Prioritization: 6, Communication: 8},
		OverallRating: &rating,
	}}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, nil, nil, recd)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctl.End()
		}()
	}
	wg.Wait()

	waitFor(t, "feedback ready", func() bool {
		return recd.lastState() == StateFeedbackReady
	})
	if _, assessments := dlg.counts(); assessments != 1 {
		t.Fatalf("expected exactly one assessment, got %d", assessments)
	}
	records := recd.recordList()
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	if records[0].Kind != string(KindPractice) {
		t.Errorf("unexpected record kind %q", records[0].Kind)
	}
	if fb := recd.feedbackList(); len(fb) != 1 || fb[0] == nil {
		t.Fatalf("expected one non-nil feedback emission, got %v", fb)
	}
}

func TestNilAssessmentStillReachesFeedback(t *testing.T) {
	dlg := &fakeDialogue{assessment: nil}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, nil, nil, recd)

	ctl.End()
	waitFor(t, "feedback ready", func() bool {
		return recd.lastState() == StateFeedbackReady
	})
	if records := recd.recordList(); len(records) != 0 {
		t.Fatalf("a failed assessment must not persist a record, got %d", len(records))
	}
	fb := recd.feedbackList()
	if len(fb) != 1 || fb[0] != nil {
		t.Fatalf("expected a single nil feedback emission, got %v", fb)
	}
}

func TestCountdownExpiryEndsSession(t *testing.T) {
	cfg := practiceConfig()
	cfg.TickInterval = time.Millisecond
	cfg.TotalSeconds = 12
	cfg.WarningSecond = 8
	cfg.FinalTickAfter = 3
	dlg := &fakeDialogue{assessment: &dialogue.Assessment{}}
	recd := &recorder{}
	_ = interviewing(t, cfg, dlg, nil, nil, recd)

	waitFor(t, "expiry to finish the session", func() bool {
		return recd.lastState() == StateFeedbackReady
	})
	recd.mu.Lock()
	cues := append([]string(nil), recd.cues...)
	recd.mu.Unlock()
	var warnings, ticks int
	for _, cue := range cues {
		switch cue {
		case CueWarning:
			warnings++
		case CueTick:
			ticks++
		}
	}
	if warnings != 1 {
		t.Errorf("expected exactly one warning cue, got %d", warnings)
	}
	if ticks != cfg.FinalTickAfter {
		t.Errorf("expected %d final tick cues, got %d", cfg.FinalTickAfter, ticks)
	}
	if _, assessments := dlg.counts(); assessments != 1 {
		t.Errorf("expected one assessment after expiry, got %d", assessments)
	}
}

func TestMicDenialBlocksStart(t *testing.T) {
	dlg := &fakeDialogue{}
	rec := &fakeRecognizer{}
	recd := &recorder{}
	ctl := New(practiceConfig(), dlg, recd.events())
	ctl.AttachSpeech(rec, nil)

	ctl.SkipResume()
	ctl.Start(false)
	if got := ctl.Snapshot().State; got != StateProfileReady {
		t.Fatalf("expected to stay in profile-ready, got %q", got)
	}
	if notices := recd.noticeList(); len(notices) != 1 || notices[0] != msgMicRequired {
		t.Fatalf("expected microphone notice, got %v", notices)
	}

	ctl.Start(true)
	ctl.Begin(false)
	if got := ctl.Snapshot().State; got != StateIntroAcknowledged {
		t.Fatalf("expected to stay in intro-acknowledged, got %q", got)
	}
	ctl.Begin(true)
	if got := ctl.Snapshot().State; got != StateInterviewing {
		t.Fatalf("expected interviewing after granted begin, got %q", got)
	}
}

func TestResumeRejectionAndAcceptance(t *testing.T) {
	dlg := &fakeDialogue{resume: dialogue.ResumeAnalysis{IsValidDocument: false}}
	recd := &recorder{}
	ctl := New(fullConfig(), dlg, recd.events())

	ctl.SubmitResume("application/pdf", []byte("%PDF-cat-photo"))
	waitFor(t, "rejection notice", func() bool {
		return len(recd.noticeList()) == 1
	})
	if got := recd.noticeList()[0]; got != msgResumeRejected {
		t.Fatalf("expected rejection notice, got %q", got)
	}
	if got := ctl.Snapshot().State; got != StateAwaitingResumeOrSkip {
		t.Fatalf("a rejected resume must not advance the session, got %q", got)
	}

	dlg.mu.Lock()
	dlg.resume = dialogue.ResumeAnalysis{
		IsValidDocument: true,
		ProfileSummary:  "Payments PM, five years.",
		Questions:       []string{"Design a bill-split feature."},
	}
	dlg.mu.Unlock()
	ctl.SubmitResume("application/pdf", []byte("%PDF-resume"))
	waitFor(t, "profile ready", func() bool {
		return ctl.Snapshot().State == StateProfileReady
	})
}

func TestOversizedResumeRejectedLocally(t *testing.T) {
	dlg := &fakeDialogue{}
	recd := &recorder{}
	ctl := New(fullConfig(), dlg, recd.events())

	ctl.SubmitResume("application/pdf", make([]byte, maxResumeBytes+1))
	if notices := recd.noticeList(); len(notices) != 1 || notices[0] != msgResumeTooLarge {
		t.Fatalf("expected size notice, got %v", notices)
	}
	if got := ctl.Snapshot().State; got != StateAwaitingResumeOrSkip {
		t.Fatalf("oversized upload must not advance the session, got %q", got)
	}
}

func TestUnsupportedResumeTypeRejectedLocally(t *testing.T) {
	dlg := &fakeDialogue{}
	recd := &recorder{}
	ctl := New(fullConfig(), dlg, recd.events())

	ctl.SubmitResume("image/png", []byte("not a document"))
	if notices := recd.noticeList(); len(notices) != 1 || notices[0] != msgResumeBadType {
		t.Fatalf("expected file type notice, got %v", notices)
	}
	if got := ctl.Snapshot().State; got != StateAwaitingResumeOrSkip {
		t.Fatalf("unsupported upload must not advance the session, got %q", got)
	}
}

func TestRestartResetsSession(t *testing.T) {
	dlg := &fakeDialogue{assessment: &dialogue.Assessment{}}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, nil, nil, recd)

	ctl.SubmitUtterance("An answer.")
	waitFor(t, "turn", func() bool {
		turns, _ := dlg.counts()
		return turns == 1
	})
	ctl.End()
	waitFor(t, "feedback", func() bool {
		return recd.lastState() == StateFeedbackReady
	})

	ctl.Restart()
	snap := ctl.Snapshot()
	if snap.State != StateAwaitingResumeOrSkip {
		t.Fatalf("expected initial state after restart, got %q", snap.State)
	}
	if len(snap.Entries) != 0 {
		t.Fatalf("expected empty transcript after restart, got %d entries", len(snap.Entries))
	}
	if snap.Stage != 0 {
		t.Fatalf("expected stage 0 after restart, got %d", snap.Stage)
	}
}

func TestRestartDiscardsInFlightTurn(t *testing.T) {
	gate := make(chan struct{})
	dlg := &fakeDialogue{
		reply:      dialogue.TurnReply{ReplyText: "A deep-dive into the user segment.", StageIndex: 3},
		assessment: &dialogue.Assessment{},
		gate:       gate,
	}
	recd := &recorder{}
	ctl := interviewing(t, practiceConfig(), dlg, nil, nil, recd)

	// The first session ends with a turn still held at the dialogue layer.
	ctl.SubmitUtterance("An answer the interviewer never gets to address.")
	waitFor(t, "held turn", func() bool {
		turns, _ := dlg.counts()
		return turns == 1
	})
	ctl.End()
	waitFor(t, "feedback", func() bool {
		return recd.lastState() == StateFeedbackReady
	})
	ctl.Restart()

	dlg.mu.Lock()
	dlg.gate = nil
	dlg.mu.Unlock()

	ctl.SkipResume()
	ctl.Start(true)
	ctl.Begin(true)
	if got := ctl.Snapshot().State; got != StateInterviewing {
		t.Fatalf("expected interviewing state after restart, got %q", got)
	}

	// Releasing the stale reply must leave the new session untouched.
	close(gate)
	time.Sleep(20 * time.Millisecond)
	snap := ctl.Snapshot()
	if snap.Stage != 0 {
		t.Fatalf("stale reply moved the new session's stage to %d", snap.Stage)
	}
	if got := recd.stageList(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("unexpected stage events %v", got)
	}
	if len(snap.Entries) != 1 {
		t.Fatalf("stale reply mutated the new transcript: %+v", snap.Entries)
	}

	// The new session still accepts turns of its own.
	ctl.SubmitUtterance("A fresh answer for the new run.")
	waitFor(t, "fresh turn resolved", func() bool {
		entries := recd.entries()
		return len(entries) == 3 && !entries[2].Pending
	})
	if got := recd.entries()[2].Text; got != "A deep-dive into the user segment." {
		t.Fatalf("unexpected resolved reply %q", got)
	}
}
