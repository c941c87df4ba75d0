package speech

import (
	"context"
	"log"
	"sync"
)

// PCMStreamer streams 48kHz PCM mono audio for the given text. Both
// channels close when the stream ends; cancelling the context stops the
// stream early.
type PCMStreamer interface {
	StreamPCM48k(ctx context.Context, text string) (<-chan []byte, <-chan error)
}

// PCMSink consumes 48kHz PCM bytes and performs delivery, e.g. binary
// WebSocket frames to the browser's audio player. Reset drops any queued
// audio immediately so cancellation feels instant.
type PCMSink interface {
	WritePCM(pcm []byte)
	FlushTail()
	Reset()
}

type nopSink struct{}

func (nopSink) WritePCM(_ []byte) {}
func (nopSink) FlushTail()        {}
func (nopSink) Reset()            {}

// StreamSynthesizer adapts a PCMStreamer to the Synthesizer contract:
// speak-cancels-current, exactly-once completion on finish and error
// alike, and a Cancel that synchronously blocks the cancelled utterance's
// completion.
type StreamSynthesizer struct {
	streamer PCMStreamer
	sink     PCMSink

	mu         sync.Mutex
	gen        int
	speaking   bool
	cancelCtx  context.CancelFunc
	onComplete func()
}

// NewStreamSynthesizer constructs a synthesizer over streamer and sink.
func NewStreamSynthesizer(streamer PCMStreamer, sink PCMSink) *StreamSynthesizer {
	if sink == nil {
		sink = nopSink{}
	}
	return &StreamSynthesizer{streamer: streamer, sink: sink}
}

func (s *StreamSynthesizer) Speak(text string, onComplete func()) {
	s.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.speaking = true
	s.cancelCtx = cancel
	s.onComplete = onComplete
	s.mu.Unlock()

	pcmCh, errCh := s.streamer.StreamPCM48k(ctx, text)
	go func() {
		openPCM, openErr := true, true
		failed := false
		for openPCM || openErr {
			select {
			case b, ok := <-pcmCh:
				if !ok {
					openPCM = false
					continue
				}
				if len(b) > 0 && s.current(gen) {
					s.sink.WritePCM(b)
				}
			case e, ok := <-errCh:
				if !ok {
					openErr = false
					continue
				}
				if e != nil {
					log.Printf("tts stream error: %v", e)
					failed = true
				}
			}
		}
		if !failed && s.current(gen) {
			s.sink.FlushTail()
		}
		cancel()
		s.complete(gen)
	}()
}

func (s *StreamSynthesizer) Cancel() {
	s.mu.Lock()
	// Bumping the generation before releasing the lock guarantees the
	// drained stream's completion is discarded, even if its goroutine is
	// already past the context check.
	cancel := s.cancelCtx
	s.gen++
	s.speaking = false
	s.cancelCtx = nil
	s.onComplete = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.sink.Reset()
}

// Unlock is a no-op: server-side audio needs no user gesture.
func (s *StreamSynthesizer) Unlock() {}

// Speaking reports whether an utterance stream is active.
func (s *StreamSynthesizer) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

func (s *StreamSynthesizer) current(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen && s.speaking
}

func (s *StreamSynthesizer) complete(gen int) {
	s.mu.Lock()
	if gen != s.gen || !s.speaking {
		s.mu.Unlock()
		return
	}
	cb := s.onComplete
	s.speaking = false
	s.cancelCtx = nil
	s.onComplete = nil
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

var _ Synthesizer = (*StreamSynthesizer)(nil)
