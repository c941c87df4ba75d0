package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	GeminiAPIKey  string
	GeminiModelID string

	// ScriptURL is the apps-script endpoint used for best-effort user
	// logging, resume uploads and the visitor counter. Empty disables all
	// three without affecting the interview flow.
	ScriptURL string

	RedisAddr string

	DeepgramAPIKey    string
	ElevenLabsKey     string
	ElevenLabsVoiceID string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set - interview dialogue will not work")
	}
	geminiModel := os.Getenv("GEMINI_MODEL_ID")
	if geminiModel == "" {
		geminiModel = "gemini-2.5-flash"
	}

	scriptURL := os.Getenv("GOOGLE_SCRIPT_URL")
	if scriptURL == "" {
		log.Println("Warning: GOOGLE_SCRIPT_URL not set - user logging, resume uploads and visitor count disabled")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Println("Warning: REDIS_ADDR not set - interview history kept in memory only")
	}

	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	elevenKey := os.Getenv("ELEVENLABS_API_KEY")
	voiceID := os.Getenv("ELEVENLABS_VOICE_ID")
	if deepgramKey == "" && elevenKey == "" {
		log.Println("Warning: no server-side TTS key set - synthesis falls back to the browser voice")
	}

	log.Printf("config: HTTP_ADDRESS=%s", addr)
	return Config{
		HTTPAddress:       addr,
		GeminiAPIKey:      geminiKey,
		GeminiModelID:     geminiModel,
		ScriptURL:         scriptURL,
		RedisAddr:         redisAddr,
		DeepgramAPIKey:    deepgramKey,
		ElevenLabsKey:     elevenKey,
		ElevenLabsVoiceID: voiceID,
	}
}
