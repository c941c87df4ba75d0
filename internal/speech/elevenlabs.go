package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ElevenLabsVoice streams interviewer replies as 48kHz PCM over the
// ElevenLabs HTTP streaming endpoint. It implements PCMStreamer and is the
// fallback when no Deepgram key is configured.
type ElevenLabsVoice struct {
	APIKey  string
	VoiceID string
}

// NewElevenLabsVoice constructs a voice for the given voice id.
func NewElevenLabsVoice(apiKey, voiceID string) *ElevenLabsVoice {
	return &ElevenLabsVoice{APIKey: apiKey, VoiceID: voiceID}
}

func (e *ElevenLabsVoice) StreamPCM48k(ctx context.Context, text string) (<-chan []byte, <-chan error) {
	pcmCh := make(chan []byte, 4096)
	errCh := make(chan error, 1)
	go func() {
		defer close(pcmCh)
		defer close(errCh)
		if e.APIKey == "" || e.VoiceID == "" {
			errCh <- fmt.Errorf("elevenlabs: api key or voice id missing")
			return
		}
		if err := e.stream(ctx, text, pcmCh); err != nil {
			errCh <- err
		}
	}()
	return pcmCh, errCh
}

func (e *ElevenLabsVoice) stream(ctx context.Context, text string, pcmCh chan<- []byte) error {
	u := url.URL{
		Scheme: "https",
		Host:   "api.elevenlabs.io",
		Path:   "/v1/text-to-speech/" + e.VoiceID + "/stream",
	}
	q := u.Query()
	q.Set("model_id", "eleven_flash_v2_5")
	q.Set("output_format", "pcm_48000")
	q.Set("optimize_streaming_latency", "2")
	u.RawQuery = q.Encode()

	body := map[string]any{
		"model_id": "eleven_flash_v2_5",
		"text":     text,
		"voice_settings": map[string]any{
			"stability":         0.4,
			"similarity_boost":  0.7,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	}
	buf, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 0}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs stream error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elevenlabs status=%d body=%s", resp.StatusCode, string(b))
	}

	chunk := make([]byte, 4096)
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			out := make([]byte, n)
			copy(out, chunk[:n])
			select {
			case pcmCh <- out:
			case <-ctx.Done():
				return nil
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return fmt.Errorf("elevenlabs read error: %w", rerr)
		}
	}
}

var _ PCMStreamer = (*ElevenLabsVoice)(nil)
