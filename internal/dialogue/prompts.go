package dialogue

import (
	"fmt"
	"strings"

	"github.com/VaioMishra/Product-Manager-AI/internal/transcript"
)

// frameworkForCategory names the structured approach the interviewer
// steers towards for a given category.
func frameworkForCategory(category Category) string {
	switch category {
	case CategoryProductDesign:
		return "the CIRCLES framework (Comprehend, Identify, Report, Cut, List, Evaluate, Summarize)"
	case CategoryRootCause:
		return "a structured RCA framework like the 5 Whys or AARM (Acquisition, Activation, Retention, Monetization) metrics"
	case CategoryProductStrategy:
		return "a strategy framework like SWOT or Porter's Five Forces"
	case CategoryEstimation:
		return "a top-down or bottom-up estimation approach, clearly stating all assumptions"
	case CategoryProductSense:
		return "a user-centric approach, focusing on user problems, goals, and potential solutions"
	default:
		return "a structured problem-solving approach"
	}
}

func practiceSystemPrompt(question string, profile Profile, category Category) string {
	framework := frameworkForCategory(category)
	var b strings.Builder
	fmt.Fprintf(&b, "You are Vaibhav, an expert and friendly Product Manager Interview Coach from a top tech company. Your goal is to conduct a realistic and helpful mock interview with %s, a candidate with %d years of experience.\n\n", profile.CandidateName, profile.YearsOfExperience)
	fmt.Fprintf(&b, "The interview question is: %q (%s).\n\n", question, category)
	b.WriteString("Persona: natural and conversational, empathetic and encouraging, context-aware. Refer back to what the candidate has said.\n")
	b.WriteString("Role: guide, don't solve. Never give the answer directly. ")
	fmt.Fprintf(&b, "Gently steer the candidate towards the principles of %s without naming it repeatedly. Keep the discussion focused on the question.\n\n", framework)
	b.WriteString("Response format: a single valid JSON object with fields responseText (string, simple markdown, no blank lines between list items) and currentStage ")
	fmt.Fprintf(&b, "(the 0-indexed integer of the current interview stage, 0-4. Stages: %s).", strings.Join(Stages, ", "))
	return b.String()
}

func fullInterviewSystemPrompt(profile Profile, profileSummary string, questionPool []string, warmUp bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are Vaio, a senior Product Manager conducting a realistic 45-minute voice interview with %s.\n\n", profile.CandidateName)
	fmt.Fprintf(&b, "Candidate profile: %s\n\n", profileSummary)
	b.WriteString("Question pool to draw from over the session (one at a time, follow up naturally before moving on):\n")
	for i, q := range questionPool {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\nSpeak conversationally; replies are read aloud, so keep them short and free of markdown.\n")
	if warmUp {
		b.WriteString("\nThis is the very start of the interview: ask a warm-up, rapport-building question about the candidate's background. Do NOT use a question from the pool yet.")
	}
	return b.String()
}

func assessmentSystemPrompt(topic, conversation string, profile Profile, category Category) string {
	var b strings.Builder
	b.WriteString("You are a FAANG Product Manager Interview Bar Raiser.\n")
	fmt.Fprintf(&b, "You are evaluating a candidate named %s with %d years of experience.\n", profile.CandidateName, profile.YearsOfExperience)
	fmt.Fprintf(&b, "The question was about %q (%s).\n", topic, category)
	b.WriteString("Provide structured feedback in JSON: fields strengths, weaknesses, improvements (each an array of 2-3 specific, actionable strings) and scores with integer fields structure, creativity, strategy, prioritization, communication, each 1 (poor) to 10 (excellent). Be constructive and encouraging.\n")
	b.WriteString("The candidate's conversation is:\n---\n")
	b.WriteString(conversation)
	b.WriteString("\n---")
	return b.String()
}

func frameworkExplanationPrompt(question string, category Category) string {
	framework := frameworkForCategory(category)
	var b strings.Builder
	b.WriteString("You are a world-class Product Manager Interview Coach.\n")
	b.WriteString("Explain HOW to approach an interview question, without giving the actual answer.\n")
	fmt.Fprintf(&b, "The question is: %q (%s).\n", question, category)
	fmt.Fprintf(&b, "Explain, step-by-step, how a candidate should approach this using %s. ", framework)
	b.WriteString("Break down each stage with 1-2 sentences. Keep it concise and actionable. Use simple markdown lists, no headings.")
	return b.String()
}

func sampleAnswerPrompt(question string, profile Profile, category Category) string {
	framework := frameworkForCategory(category)
	var b strings.Builder
	b.WriteString("You are an expert Product Manager from a FAANG company providing a sample answer for an interview question.\n")
	fmt.Fprintf(&b, "The question is: %q (%s). The candidate has %d years of experience.\n", question, category, profile.YearsOfExperience)
	fmt.Fprintf(&b, "START by stating the framework used (%s). ", framework)
	b.WriteString("Use plain-text headings per framework step, simple markdown emphasis and lists, and the tone of an experienced PM presenting a case.")
	return b.String()
}

func resumeAnalysisPrompt(profile Profile) string {
	var b strings.Builder
	b.WriteString("You are an expert technical recruiter. The attached document should be a candidate resume.\n")
	fmt.Fprintf(&b, "The candidate claims to be %s with %d years of experience.\n\n", profile.CandidateName, profile.YearsOfExperience)
	b.WriteString("Respond with a single JSON object:\n")
	b.WriteString("- isResumeValid: false if the document is not a resume (then leave the other fields empty)\n")
	b.WriteString("- profileSummary: a 2-3 sentence summary of the candidate's background\n")
	b.WriteString("- questions: 8-10 personalized interview questions grounded in their actual experience")
	return b.String()
}

// historyContents maps transcript entries onto chat contents, user entries
// as role "user" and interviewer entries as role "model".
func historyContents(history []transcript.Entry) []geminiContent {
	contents := make([]geminiContent, 0, len(history))
	for _, e := range history {
		role := "user"
		if e.Speaker == transcript.SpeakerInterviewer {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: e.Text}}})
	}
	return contents
}
