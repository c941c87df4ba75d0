package httpserver

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
	"github.com/VaioMishra/Product-Manager-AI/internal/history"
	"github.com/VaioMishra/Product-Manager-AI/internal/questions"
	"github.com/VaioMishra/Product-Manager-AI/internal/session"
	"github.com/VaioMishra/Product-Manager-AI/internal/speech"
	"github.com/VaioMishra/Product-Manager-AI/internal/transcript"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 8192,
	CheckOrigin: func(r *http.Request) bool {
		// The app serves its own client; restrict in production.
		return true
	},
}

// clientMessage is one inbound frame from the browser.
type clientMessage struct {
	Type string `json:"type"`

	// hello
	Kind      string `json:"kind,omitempty"`
	Name      string `json:"name,omitempty"`
	Yoe       int    `json:"yoe,omitempty"`
	Category  string `json:"category,omitempty"`
	Question  string `json:"question,omitempty"`
	ServerTTS bool   `json:"serverTts,omitempty"`

	// transitions and speech events
	MicGranted bool   `json:"micGranted,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	Data       string `json:"data,omitempty"`
	Text       string `json:"text,omitempty"`
	Utterance  int    `json:"utterance,omitempty"`
}

// serverMessage is one outbound state frame. Speech commands go out as
// speech.Command frames on the same socket.
type serverMessage struct {
	Type       string               `json:"type"`
	State      session.State        `json:"state,omitempty"`
	Voice      session.VoiceState   `json:"voice,omitempty"`
	Entries    []transcript.Entry   `json:"transcript,omitempty"`
	Stage      int                  `json:"stage,omitempty"`
	Remaining  int                  `json:"remaining,omitempty"`
	Cue        string               `json:"cue,omitempty"`
	Notice     string               `json:"notice,omitempty"`
	Feedback   *dialogue.Assessment `json:"feedback,omitempty"`
	FeedbackOK bool                 `json:"feedbackOk,omitempty"`
	Snapshot   *session.Snapshot    `json:"snapshot,omitempty"`
}

// wsBridge serializes writes to one socket; controller events, speech
// commands and audio frames all funnel through it from different
// goroutines.
type wsBridge struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (b *wsBridge) sendJSON(v any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.WriteJSON(v)
}

func (b *wsBridge) sendBinary(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.WriteMessage(websocket.BinaryMessage, p)
}

// wsPCMSink delivers server-side TTS audio as binary frames. Flush and
// reset are signalled as JSON so the player can drain or drop its queue.
type wsPCMSink struct{ bridge *wsBridge }

func (s wsPCMSink) WritePCM(pcm []byte) {
	if err := s.bridge.sendBinary(pcm); err != nil {
		log.Printf("ws: audio frame send failed: %v", err)
	}
}

func (s wsPCMSink) FlushTail() {
	_ = s.bridge.sendJSON(serverMessage{Type: "audio-flush"})
}

func (s wsPCMSink) Reset() {
	_ = s.bridge.sendJSON(serverMessage{Type: "audio-reset"})
}

// handleSession runs one interview over a WebSocket. The first frame must
// be a hello carrying the session setup; afterwards the socket carries
// user actions and browser speech events inbound, and state updates plus
// speech commands outbound.
func (s *Server) handleSession(c echo.Context) error {
	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return nil
	}
	defer conn.Close()
	bridge := &wsBridge{conn: conn}

	var hello clientMessage
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != "hello" {
		_ = bridge.sendJSON(serverMessage{Type: "error", Notice: "expected hello"})
		return nil
	}
	conn.SetReadDeadline(time.Time{})

	cfg := session.Config{
		Kind:         session.Kind(hello.Kind),
		Profile:      dialogue.Profile{CandidateName: hello.Name, YearsOfExperience: hello.Yoe},
		Category:     dialogue.Category(hello.Category),
		Question:     hello.Question,
		FallbackPool: questions.GenericFullInterviewPool(),
	}
	if cfg.Kind != session.KindFull {
		cfg.Kind = session.KindPractice
	}
	if cfg.Kind == session.KindPractice && cfg.Category == "" {
		if q, ok := questions.Lookup(cfg.Question); ok {
			cfg.Category = q.Category
		}
	}

	ctl := session.New(cfg, s.Dialogue, s.sessionEvents(bridge))
	rec := speech.NewBrowserRecognizer(bridge.sendJSON, ctl.RecognizerEvents())
	var syn speech.Synthesizer
	browserSyn := speech.NewBrowserSynthesizer(bridge.sendJSON)
	if hello.ServerTTS && s.Voice != nil {
		syn = speech.NewStreamSynthesizer(s.Voice, wsPCMSink{bridge: bridge})
	} else {
		syn = browserSyn
	}
	ctl.AttachSpeech(rec, syn)
	defer func() {
		if rec.Active() {
			log.Printf("session %s: socket closed while recognition active", ctl.ID())
		}
		ctl.Close()
	}()

	snap := ctl.Snapshot()
	_ = bridge.sendJSON(serverMessage{Type: "snapshot", Snapshot: &snap})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("session %s: ws read error: %v", ctl.ID(), err)
			}
			return nil
		}
		switch msg.Type {
		case "resume":
			data, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				_ = bridge.sendJSON(serverMessage{Type: "error", Notice: "bad resume encoding"})
				continue
			}
			ctl.SubmitResume(msg.MimeType, data)
		case "skip-resume":
			ctl.SkipResume()
		case "start":
			ctl.Start(msg.MicGranted)
		case "begin":
			ctl.Begin(msg.MicGranted)
		case "utterance":
			ctl.SubmitUtterance(msg.Text)
		case "toggle-mic":
			ctl.ToggleListening()
		case "end":
			ctl.End()
		case "restart":
			ctl.Restart()
		case "bye":
			return nil
		case speech.EvtRecognitionStart, speech.EvtRecognitionInterim,
			speech.EvtRecognitionResult, speech.EvtRecognitionEnd,
			speech.EvtRecognitionError:
			rec.HandleEvent(msg.Type, msg.Text)
		case speech.EvtSpeechEnd, speech.EvtSpeechError:
			browserSyn.HandleEvent(msg.Type, msg.Utterance)
		default:
			log.Printf("session %s: unknown message type %q", ctl.ID(), msg.Type)
		}
	}
}

// sessionEvents translates controller output into socket frames and
// persists finished records.
func (s *Server) sessionEvents(bridge *wsBridge) session.Events {
	return session.Events{
		OnState: func(st session.State) {
			_ = bridge.sendJSON(serverMessage{Type: "state", State: st})
		},
		OnVoice: func(v session.VoiceState) {
			_ = bridge.sendJSON(serverMessage{Type: "voice", Voice: v})
		},
		OnTranscript: func(entries []transcript.Entry) {
			_ = bridge.sendJSON(serverMessage{Type: "transcript", Entries: entries})
		},
		OnStage: func(stage int) {
			_ = bridge.sendJSON(serverMessage{Type: "stage", Stage: stage})
		},
		OnTimer: func(remaining int) {
			_ = bridge.sendJSON(serverMessage{Type: "timer", Remaining: remaining})
		},
		OnCue: func(kind string) {
			_ = bridge.sendJSON(serverMessage{Type: "cue", Cue: kind})
		},
		OnNotice: func(msg string) {
			_ = bridge.sendJSON(serverMessage{Type: "notice", Notice: msg})
		},
		OnFeedback: func(a *dialogue.Assessment) {
			_ = bridge.sendJSON(serverMessage{Type: "feedback", Feedback: a, FeedbackOK: a != nil})
		},
		OnRecord: func(rec history.Record) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Store.Append(ctx, rec); err != nil {
				log.Printf("record %s: persist failed: %v", rec.ID, err)
			}
		},
	}
}
