package dialogue

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/VaioMishra/Product-Manager-AI/internal/transcript"
)

// GeminiClient talks to the Gemini generateContent REST API.
type GeminiClient struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateContentRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient constructs a client with a generous timeout; dialogue
// calls routinely take seconds.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		Model:      model,
	}
}

// generate issues one generateContent call and returns the first
// candidate's concatenated text.
func (c *GeminiClient) generate(ctx context.Context, system string, contents []geminiContent, wantJSON bool) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("gemini api key missing")
	}
	endpoint := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", c.Model)

	req := generateContentRequest{Contents: contents}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	if wantJSON {
		req.GenerationConfig = &generationConfig{ResponseMIMEType: "application/json"}
	}
	body, _ := json.Marshal(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini error: status=%d body=%s", resp.StatusCode, string(b))
	}
	var gr generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", err
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty candidates")
	}
	var out strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	return strings.TrimSpace(out.String()), nil
}

// NextTurn implements Client.
func (c *GeminiClient) NextTurn(ctx context.Context, history []transcript.Entry, question string, profile Profile, category Category) (TurnReply, error) {
	system := practiceSystemPrompt(question, profile, category)
	text, err := c.generate(ctx, system, historyContents(history), true)
	if err != nil {
		return TurnReply{}, err
	}
	var reply TurnReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return TurnReply{}, fmt.Errorf("gemini: bad turn payload: %w", err)
	}
	reply.StageIndex = ClampStage(reply.StageIndex)
	return reply, nil
}

// NextFullInterviewTurn implements Client. A history holding only the
// opening line triggers the warm-up instruction.
func (c *GeminiClient) NextFullInterviewTurn(ctx context.Context, history []transcript.Entry, profile Profile, profileSummary string, questionPool []string) (string, error) {
	warmUp := candidateTurns(history) <= 1
	system := fullInterviewSystemPrompt(profile, profileSummary, questionPool, warmUp)
	return c.generate(ctx, system, historyContents(history), false)
}

// candidateTurns counts how often the candidate has spoken so far. The
// session controller records the user's utterance before requesting a
// reply, so the opening exchange arrives with exactly one user entry.
func candidateTurns(history []transcript.Entry) int {
	n := 0
	for _, e := range history {
		if e.Speaker == transcript.SpeakerUser {
			n++
		}
	}
	return n
}

// Assess implements Client. It deliberately swallows errors: any failure
// returns nil and the caller renders the no-feedback state.
func (c *GeminiClient) Assess(ctx context.Context, topic, conversation string, profile Profile, category Category) *Assessment {
	system := assessmentSystemPrompt(topic, conversation, profile, category)
	contents := []geminiContent{{Role: "user", Parts: []geminiPart{{Text: "Please evaluate the candidate's conversation based on the instructions."}}}}
	text, err := c.generate(ctx, system, contents, true)
	if err != nil {
		log.Printf("assessment call failed: %v", err)
		return nil
	}
	var a Assessment
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		log.Printf("assessment parse failed: %v", err)
		return nil
	}
	return &a
}

// FrameworkExplanation implements Client.
func (c *GeminiClient) FrameworkExplanation(ctx context.Context, question string, category Category) (string, error) {
	system := frameworkExplanationPrompt(question, category)
	contents := []geminiContent{{Role: "user", Parts: []geminiPart{{Text: fmt.Sprintf("Please explain the approach for the question: %q", question)}}}}
	return c.generate(ctx, system, contents, false)
}

// SampleAnswer implements Client.
func (c *GeminiClient) SampleAnswer(ctx context.Context, question string, profile Profile, category Category) (string, error) {
	system := sampleAnswerPrompt(question, profile, category)
	contents := []geminiContent{{Role: "user", Parts: []geminiPart{{Text: fmt.Sprintf("Please provide a sample answer for this question: %q", question)}}}}
	return c.generate(ctx, system, contents, false)
}

// AnalyzeResume implements Client. The document travels inline as base64.
func (c *GeminiClient) AnalyzeResume(ctx context.Context, mimeType string, data []byte, profile Profile) (ResumeAnalysis, error) {
	system := resumeAnalysisPrompt(profile)
	contents := []geminiContent{{
		Role: "user",
		Parts: []geminiPart{
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
			{Text: "Analyze this resume per the instructions."},
		},
	}}
	text, err := c.generate(ctx, system, contents, true)
	if err != nil {
		return ResumeAnalysis{}, err
	}
	var ra ResumeAnalysis
	if err := json.Unmarshal([]byte(text), &ra); err != nil {
		return ResumeAnalysis{}, fmt.Errorf("gemini: bad resume payload: %w", err)
	}
	return ra, nil
}

var _ Client = (*GeminiClient)(nil)
