package dialogue

import (
	"context"

	"github.com/VaioMishra/Product-Manager-AI/internal/transcript"
)

// Profile is the immutable candidate profile captured at onboarding.
type Profile struct {
	CandidateName     string `json:"name"`
	YearsOfExperience int    `json:"yoe"`
	ResumeLink        string `json:"resumeLink,omitempty"`
}

// Category is one of the fixed interview categories of the question bank.
type Category string

const (
	CategoryProductSense    Category = "Product Sense"
	CategoryRootCause       Category = "Root Cause Analysis (RCA)"
	CategoryProductDesign   Category = "Product Design"
	CategoryProductStrategy Category = "Product Strategy"
	CategoryEstimation      Category = "Estimation"
	CategoryFullInterview   Category = "Full Interview"
)

// Stages are the five fixed phases of the structured interview rubric,
// indexed 0-4.
var Stages = []string{"Clarify", "Structure", "Ideate", "Prioritize", "Summarize"}

// TurnReply is the structured practice-mode reply. StageIndex is always
// within [0, len(Stages)); out-of-range values from the model are clamped
// to 0.
type TurnReply struct {
	ReplyText  string `json:"responseText"`
	StageIndex int    `json:"currentStage"`
}

// Scores holds the five 1-10 assessment criteria.
type Scores struct {
	Structure      int `json:"structure"`
	Creativity     int `json:"creativity"`
	Strategy       int `json:"strategy"`
	Prioritization int `json:"prioritization"`
	Communication  int `json:"communication"`
}

// Assessment is the structured end-of-session feedback.
type Assessment struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Improvements  []string `json:"improvements"`
	Scores        Scores   `json:"scores"`
	OverallRating *float64 `json:"overallRating,omitempty"`
}

// ResumeAnalysis is the result of analyzing an uploaded resume document.
// IsValidDocument=false means the file is not a resume; the caller must
// surface a specific rejection, never proceed with an empty pool.
type ResumeAnalysis struct {
	IsValidDocument bool     `json:"isResumeValid"`
	ProfileSummary  string   `json:"profileSummary"`
	Questions       []string `json:"questions"`
}

// Client is the remote dialogue contract consumed by the session
// controller. Latency is measured in seconds and outright failure is
// expected; callers decide user-visible behavior.
type Client interface {
	// NextTurn generates the next scripted practice-mode reply.
	NextTurn(ctx context.Context, history []transcript.Entry, question string, profile Profile, category Category) (TurnReply, error)
	// NextFullInterviewTurn generates the next open-ended reply. While the
	// candidate has spoken at most once, the reply must be a warm-up
	// rapport question, not one from the pool.
	NextFullInterviewTurn(ctx context.Context, history []transcript.Entry, profile Profile, profileSummary string, questionPool []string) (string, error)
	// Assess produces the final structured feedback, or nil on any failure.
	Assess(ctx context.Context, topic, conversation string, profile Profile, category Category) *Assessment
	// FrameworkExplanation explains how to approach a question without
	// answering it.
	FrameworkExplanation(ctx context.Context, question string, category Category) (string, error)
	// SampleAnswer produces an expert-level model answer for a question.
	SampleAnswer(ctx context.Context, question string, profile Profile, category Category) (string, error)
	// AnalyzeResume validates a resume document and derives a profile
	// summary plus a personalized question pool.
	AnalyzeResume(ctx context.Context, mimeType string, data []byte, profile Profile) (ResumeAnalysis, error)
}

// ClampStage normalizes a stage index into the valid range. Out-of-range
// values map to 0, preserving the historical policy.
func ClampStage(idx int) int {
	if idx < 0 || idx >= len(Stages) {
		return 0
	}
	return idx
}
