package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/VaioMishra/Product-Manager-AI/internal/config"
	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
	"github.com/VaioMishra/Product-Manager-AI/internal/history"
	"github.com/VaioMishra/Product-Manager-AI/internal/httpserver"
	"github.com/VaioMishra/Product-Manager-AI/internal/speech"
	"github.com/VaioMishra/Product-Manager-AI/internal/uplink"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	dlg := dialogue.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModelID)
	up := uplink.NewClient(cfg.ScriptURL)
	store := buildStore(cfg.RedisAddr)
	voice := buildVoice(cfg)

	srv := httpserver.New(dlg, store, up, voice)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}

// buildStore prefers Redis and degrades to process memory when Redis is
// unreachable, keeping the interview flow alive without persistence.
func buildStore(redisAddr string) history.Store {
	if redisAddr == "" {
		return history.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable at %s, falling back to memory store: %v", redisAddr, err)
		return history.NewMemoryStore()
	}
	log.Printf("interview history backed by redis at %s", redisAddr)
	return history.NewRedisStore(client)
}

// buildVoice picks the server-side TTS streamer, Deepgram first.
func buildVoice(cfg config.Config) speech.PCMStreamer {
	if cfg.DeepgramAPIKey != "" {
		return speech.NewDeepgramVoice(cfg.DeepgramAPIKey, "")
	}
	if cfg.ElevenLabsKey != "" {
		return speech.NewElevenLabsVoice(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
	}
	return nil
}
