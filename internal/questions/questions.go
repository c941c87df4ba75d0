// Package questions holds the curated interview question bank, the
// generic full-interview pool, and the rotating preparation tips.
package questions

import (
	"math/rand"

	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
)

// Difficulty is the coarse rating shown next to each question.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Question is one bank entry. Company tags the question's usual source,
// "General" when it has none.
type Question struct {
	Text       string            `json:"text"`
	Category   dialogue.Category `json:"category"`
	Company    string            `json:"company"`
	Difficulty Difficulty        `json:"difficulty"`
}

// Categories lists the practice categories in display order.
func Categories() []dialogue.Category {
	return []dialogue.Category{
		dialogue.CategoryProductSense,
		dialogue.CategoryRootCause,
		dialogue.CategoryProductDesign,
		dialogue.CategoryProductStrategy,
		dialogue.CategoryEstimation,
	}
}

// All returns a copy of the full bank.
func All() []Question {
	out := make([]Question, len(bank))
	copy(out, bank)
	return out
}

// ByCategory returns the bank entries for one category, in bank order.
func ByCategory(cat dialogue.Category) []Question {
	var out []Question
	for _, q := range bank {
		if q.Category == cat {
			out = append(out, q)
		}
	}
	return out
}

// Lookup finds a bank question by exact text.
func Lookup(text string) (Question, bool) {
	for _, q := range bank {
		if q.Text == text {
			return q, true
		}
	}
	return Question{}, false
}

// GenericFullInterviewPool returns the behavioral pool used when no
// resume was analyzed.
func GenericFullInterviewPool() []string {
	out := make([]string, len(genericPool))
	copy(out, genericPool)
	return out
}

// ProTips returns the preparation tips shown during onboarding.
func ProTips() []string {
	out := make([]string, len(proTips))
	copy(out, proTips)
	return out
}

// RandomProTip picks one tip.
func RandomProTip() string {
	return proTips[rand.Intn(len(proTips))]
}

var proTips = []string{
	"Network relentlessly. Reach out to PMs on LinkedIn for informational interviews. Ask about their journey, not for a job.",
	"Develop 'product sense' by deconstructing your favorite apps. Ask 'why' for every feature. Who is it for? What problem does it solve? How does it impact business metrics?",
	"Master storytelling. Your resume, interview answers, and even daily stand-ups are stories. Frame your experience using the STAR method (Situation, Task, Action, Result).",
	"Build something, anything! A simple website, a no-code app, or even a detailed product spec for a side project demonstrates initiative and your ability to ship.",
	"Don't just learn frameworks like CIRCLES or AARM, understand the 'why' behind them. They are tools for structured thinking, not a script to be memorized.",
	"Read voraciously. 'Inspired' by Marty Cagan, 'The Lean Startup' by Eric Ries, and 'Hooked' by Nir Eyal are your new best friends.",
}

var genericPool = []string{
	"Tell me about a product you launched from start to finish.",
	"Describe a time you had to influence cross-functional stakeholders without formal authority. What was the situation and how did you handle it?",
	"What is a product you use every day that you love? What's one improvement you would make to it?",
	"How do you decide what to build? Walk me through your prioritization process.",
	"Tell me about a time a project failed or didn't go as planned. What did you learn from the experience?",
	"How would you measure the success of a new feature?",
	"Describe a situation where you had to make a decision with incomplete data.",
	"What's the most important skill for a Product Manager to have and why?",
	"How do you stay up-to-date with the latest technology trends and market changes?",
}

var bank = []Question{
	{Text: "How would you improve YouTube Shorts?", Category: dialogue.CategoryProductSense, Company: "Google", Difficulty: Medium},
	{Text: "You're the PM for Instagram Stories. What's the next big feature you'd build?", Category: dialogue.CategoryProductSense, Company: "Meta", Difficulty: Medium},
	{Text: "Should Netflix get into gaming? If so, how?", Category: dialogue.CategoryProductSense, Company: "Netflix", Difficulty: Hard},
	{Text: "Design a product for solo travelers.", Category: dialogue.CategoryProductSense, Company: "General", Difficulty: Easy},
	{Text: "How would you improve Google Maps for electric vehicle owners?", Category: dialogue.CategoryProductSense, Company: "Google", Difficulty: Medium},
	{Text: "Imagine you are the PM for TikTok. What would you build to monetize the platform further?", Category: dialogue.CategoryProductSense, Company: "TikTok", Difficulty: Hard},
	{Text: "What's a product you love? Why? How would you improve it?", Category: dialogue.CategoryProductSense, Company: "General", Difficulty: Easy},
	{Text: "Design a feature for Airbnb to help guests feel more like locals.", Category: dialogue.CategoryProductSense, Company: "Airbnb", Difficulty: Medium},
	{Text: "How would you improve the Amazon shopping experience on mobile?", Category: dialogue.CategoryProductSense, Company: "Amazon", Difficulty: Medium},
	{Text: "Design a product to help people learn a new language.", Category: dialogue.CategoryProductSense, Company: "General", Difficulty: Easy},
	{Text: "What would you build to improve the job search experience on LinkedIn?", Category: dialogue.CategoryProductSense, Company: "Microsoft", Difficulty: Medium},
	{Text: "Imagine you are the PM for Spotify Podcasts. What feature would you build next?", Category: dialogue.CategoryProductSense, Company: "Spotify", Difficulty: Medium},
	{Text: "How would you monetize a free-to-use meditation app like Calm without using ads?", Category: dialogue.CategoryProductSense, Company: "Calm", Difficulty: Hard},

	{Text: "There is a 10% drop in food delivery orders on Swiggy. How would you investigate?", Category: dialogue.CategoryRootCause, Company: "Swiggy", Difficulty: Medium},
	{Text: "User engagement on Facebook Marketplace has dropped by 15% WoW. What's the root cause?", Category: dialogue.CategoryRootCause, Company: "Meta", Difficulty: Medium},
	{Text: "Our server costs for AWS have unexpectedly doubled last month. Why?", Category: dialogue.CategoryRootCause, Company: "Amazon", Difficulty: Hard},
	{Text: "The number of 'likes' on Instagram posts has decreased by 5% in the last week. Why?", Category: dialogue.CategoryRootCause, Company: "Meta", Difficulty: Medium},
	{Text: "Your e-commerce site's 'Add to Cart' conversion rate dropped by 20% overnight. Investigate.", Category: dialogue.CategoryRootCause, Company: "General", Difficulty: Medium},
	{Text: "Customer support ticket volume for your SaaS product has increased by 30%. What's happening?", Category: dialogue.CategoryRootCause, Company: "General", Difficulty: Hard},
	{Text: "A ride-sharing app sees a sudden spike in cancellations. What are the potential reasons?", Category: dialogue.CategoryRootCause, Company: "Uber", Difficulty: Medium},
	{Text: "The average session duration for a meditation app has gone down. Why?", Category: dialogue.CategoryRootCause, Company: "Calm", Difficulty: Easy},
	{Text: "The number of new users signing up for your SaaS product has dropped by 20% this month. Investigate.", Category: dialogue.CategoryRootCause, Company: "SaaS", Difficulty: Medium},
	{Text: "There's a 30% increase in cart abandonment rate on an e-commerce website. Why?", Category: dialogue.CategoryRootCause, Company: "General", Difficulty: Medium},
	{Text: "Your app's rating on the Google Play Store dropped from 4.5 to 3.8 in a week. What happened?", Category: dialogue.CategoryRootCause, Company: "General", Difficulty: Hard},
	{Text: "Users are spending less time on the Netflix homepage. How would you diagnose the problem?", Category: dialogue.CategoryRootCause, Company: "Netflix", Difficulty: Medium},
	{Text: "The churn rate for your subscription service has increased by 5%. What are the potential causes?", Category: dialogue.CategoryRootCause, Company: "General", Difficulty: Medium},

	{Text: "Design a new feature for Spotify to enhance music discovery for niche genres.", Category: dialogue.CategoryProductDesign, Company: "Spotify", Difficulty: Medium},
	{Text: "Design a feature for LinkedIn to help people find mentors.", Category: dialogue.CategoryProductDesign, Company: "Microsoft", Difficulty: Medium},
	{Text: "Design an app for tourists visiting a new city.", Category: dialogue.CategoryProductDesign, Company: "General", Difficulty: Easy},
	{Text: "Design a mobile banking app for teenagers.", Category: dialogue.CategoryProductDesign, Company: "Fintech", Difficulty: Medium},
	{Text: "Design a smart home device for elderly people living alone.", Category: dialogue.CategoryProductDesign, Company: "Google", Difficulty: Hard},
	{Text: "Design a solution to reduce food waste in households.", Category: dialogue.CategoryProductDesign, Company: "General", Difficulty: Medium},
	{Text: "Design a feature for a ride-sharing app to improve safety for female passengers.", Category: dialogue.CategoryProductDesign, Company: "Uber", Difficulty: Medium},
	{Text: "Design a digital resume builder.", Category: dialogue.CategoryProductDesign, Company: "General", Difficulty: Easy},
	{Text: "Design a feature for Google Photos to help users rediscover memories.", Category: dialogue.CategoryProductDesign, Company: "Google", Difficulty: Medium},
	{Text: "Design a better alarm clock app.", Category: dialogue.CategoryProductDesign, Company: "General", Difficulty: Easy},
	{Text: "Design a loyalty program for a coffee shop chain.", Category: dialogue.CategoryProductDesign, Company: "General", Difficulty: Medium},
	{Text: "Design a product to help users manage their personal finances and budget.", Category: dialogue.CategoryProductDesign, Company: "Fintech", Difficulty: Medium},
	{Text: "Design an interface for a self-driving car.", Category: dialogue.CategoryProductDesign, Company: "Tesla", Difficulty: Hard},

	{Text: "You are the CEO of Slack. How do you plan to compete with Microsoft Teams?", Category: dialogue.CategoryProductStrategy, Company: "Salesforce", Difficulty: Hard},
	{Text: "What is Google's 5-year strategy for the Pixel phone?", Category: dialogue.CategoryProductStrategy, Company: "Google", Difficulty: Hard},
	{Text: "How would you price a new B2B SaaS product for project management?", Category: dialogue.CategoryProductStrategy, Company: "General", Difficulty: Medium},
	{Text: "If you were the CEO of Twitter (X), what would be your strategy for the next 2 years?", Category: dialogue.CategoryProductStrategy, Company: "X", Difficulty: Hard},
	{Text: "Should Amazon launch a new streaming service dedicated to sports? Why or why not?", Category: dialogue.CategoryProductStrategy, Company: "Amazon", Difficulty: Hard},
	{Text: "How would you launch a new food delivery service in a market dominated by Zomato and Swiggy?", Category: dialogue.CategoryProductStrategy, Company: "Startup", Difficulty: Medium},
	{Text: "What's your strategy for growing a niche B2B SaaS product from 100 to 1000 customers?", Category: dialogue.CategoryProductStrategy, Company: "SaaS", Difficulty: Medium},
	{Text: "Evaluate the strategic decision of Microsoft to acquire Activision Blizzard.", Category: dialogue.CategoryProductStrategy, Company: "Microsoft", Difficulty: Hard},
	{Text: "You are the PM for a new startup entering the competitive note-taking app market (like Notion, Evernote). What's your go-to-market strategy?", Category: dialogue.CategoryProductStrategy, Company: "Startup", Difficulty: Medium},
	{Text: "Should Apple build a search engine?", Category: dialogue.CategoryProductStrategy, Company: "Apple", Difficulty: Hard},
	{Text: "What's your strategy to increase the adoption of Google Workspace among startups?", Category: dialogue.CategoryProductStrategy, Company: "Google", Difficulty: Medium},
	{Text: "How would you position a new streaming service against giants like Netflix and Disney+?", Category: dialogue.CategoryProductStrategy, Company: "General", Difficulty: Hard},
	{Text: "Develop a 3-year product strategy for a food-tech company like Zomato.", Category: dialogue.CategoryProductStrategy, Company: "Zomato", Difficulty: Hard},

	{Text: "Estimate the number of Uber rides in Delhi on a typical weekday.", Category: dialogue.CategoryEstimation, Company: "Uber", Difficulty: Medium},
	{Text: "Estimate the total storage space required for all photos uploaded to Instagram in a day.", Category: dialogue.CategoryEstimation, Company: "Meta", Difficulty: Hard},
	{Text: "Estimate the monthly revenue of a popular coffee shop in Bangalore.", Category: dialogue.CategoryEstimation, Company: "General", Difficulty: Easy},
	{Text: "Estimate the number of windows in New York City.", Category: dialogue.CategoryEstimation, Company: "General", Difficulty: Hard},
	{Text: "Estimate the daily revenue of the Indian Railways.", Category: dialogue.CategoryEstimation, Company: "Govt.", Difficulty: Hard},
	{Text: "Estimate the amount of paint required to paint all commercial airplanes in the world.", Category: dialogue.CategoryEstimation, Company: "General", Difficulty: Medium},
	{Text: "Estimate the number of pizzas ordered in Mumbai on a Friday night.", Category: dialogue.CategoryEstimation, Company: "Zomato", Difficulty: Medium},
	{Text: "Estimate the market size for online fitness coaching in India.", Category: dialogue.CategoryEstimation, Company: "Startup", Difficulty: Medium},
	{Text: "Estimate the number of streetlights in Mumbai.", Category: dialogue.CategoryEstimation, Company: "General", Difficulty: Medium},
	{Text: "Estimate the daily data consumption from YouTube in India.", Category: dialogue.CategoryEstimation, Company: "Google", Difficulty: Hard},
	{Text: "Estimate the number of developers in India.", Category: dialogue.CategoryEstimation, Company: "General", Difficulty: Medium},
	{Text: "Estimate the annual revenue of the Taj Mahal.", Category: dialogue.CategoryEstimation, Company: "General", Difficulty: Easy},
	{Text: "Estimate the number of WhatsApp messages sent globally every hour.", Category: dialogue.CategoryEstimation, Company: "Meta", Difficulty: Hard},
}
