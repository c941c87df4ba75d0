// Package uplink talks to the Google Apps Script endpoint backing user
// logging, resume uploads, and the visitor counter. The endpoint is
// best-effort: every failure is logged and absorbed, never surfaced to a
// session.
package uplink

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
)

// Client posts to one Apps Script deployment. A zero ScriptURL disables
// the uplink; calls become logged no-ops.
type Client struct {
	HTTPClient *http.Client
	ScriptURL  string
}

func NewClient(scriptURL string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		ScriptURL:  scriptURL,
	}
}

type scriptRequest struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

// The endpoint only accepts text/plain bodies; it parses the JSON itself.
func (c *Client) post(ctx context.Context, action string, payload any) ([]byte, error) {
	body, err := json.Marshal(scriptRequest{Action: action, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ScriptURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", action, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", action, resp.StatusCode)
	}
	return data, nil
}

// LogUser records a new candidate sign-in. Best-effort.
func (c *Client) LogUser(ctx context.Context, profile dialogue.Profile) {
	if c.ScriptURL == "" {
		log.Printf("uplink: script url not set, skipping user log for %s", profile.CandidateName)
		return
	}
	payload := map[string]any{
		"name":       profile.CandidateName,
		"yoe":        profile.YearsOfExperience,
		"resumeLink": profile.ResumeLink,
	}
	if _, err := c.post(ctx, "logUser", payload); err != nil {
		log.Printf("uplink: log user failed: %v", err)
	}
}

type uploadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	FileURL string `json:"fileUrl"`
}

// UploadResume stores the document and returns its shared URL.
func (c *Client) UploadResume(ctx context.Context, fileName, mimeType string, data []byte, userName string) (string, error) {
	if c.ScriptURL == "" {
		return "", fmt.Errorf("uplink: script url not set")
	}
	payload := map[string]any{
		"fileName": fileName,
		"mimeType": mimeType,
		"data":     base64.StdEncoding.EncodeToString(data),
		"userName": userName,
	}
	raw, err := c.post(ctx, "uploadFile", payload)
	if err != nil {
		return "", err
	}
	var resp uploadResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if resp.Status != "success" {
		return "", fmt.Errorf("upload rejected: %s", resp.Message)
	}
	return resp.FileURL, nil
}

// VisitorCount fetches the running visitor total. A nil result means the
// counter is unavailable and should simply not be shown.
func (c *Client) VisitorCount(ctx context.Context) *int {
	if c.ScriptURL == "" {
		return nil
	}
	u, err := url.Parse(c.ScriptURL)
	if err != nil {
		log.Printf("uplink: bad script url: %v", err)
		return nil
	}
	q := u.Query()
	q.Set("action", "getVisitorCount")
	q.Set("cacheBust", strconv.FormatInt(time.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		log.Printf("uplink: build visitor count request: %v", err)
		return nil
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("uplink: visitor count request failed: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("uplink: visitor count returned status %d", resp.StatusCode)
		return nil
	}
	var body struct {
		VisitorCount int `json:"visitorCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("uplink: decode visitor count: %v", err)
		return nil
	}
	count := body.VisitorCount
	return &count
}
