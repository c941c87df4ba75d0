package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/VaioMishra/Product-Manager-AI/internal/dialogue"
	"github.com/VaioMishra/Product-Manager-AI/internal/history"
	"github.com/VaioMishra/Product-Manager-AI/internal/questions"
	"github.com/VaioMishra/Product-Manager-AI/internal/speech"
	"github.com/VaioMishra/Product-Manager-AI/internal/uplink"
)

// Server bundles the HTTP API and the session WebSocket endpoint.
type Server struct {
	Dialogue dialogue.Client
	Store    history.Store
	Uplink   *uplink.Client
	// Voice is the optional server-side TTS streamer. Nil means sessions
	// use the browser's own synthesis.
	Voice speech.PCMStreamer

	echo *echo.Echo
}

// New wires the routes onto a configured Echo instance.
func New(dlg dialogue.Client, store history.Store, up *uplink.Client, voice speech.PCMStreamer) *Server {
	s := &Server{Dialogue: dlg, Store: store, Uplink: up, Voice: voice}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	api := e.Group("/api")
	api.GET("/questions", s.handleQuestions)
	api.GET("/categories", s.handleCategories)
	api.GET("/tips", s.handleTips)
	api.GET("/tips/random", s.handleRandomTip)
	api.GET("/visitors", s.handleVisitors)
	api.GET("/history", s.handleHistoryList)
	api.DELETE("/history", s.handleHistoryClear)
	api.GET("/profile", s.handleProfileLoad)
	api.POST("/profile", s.handleProfileSave)
	api.DELETE("/profile", s.handleProfileClear)
	api.POST("/coach/framework", s.handleFramework)
	api.POST("/coach/sample-answer", s.handleSampleAnswer)
	api.POST("/resume/upload", s.handleResumeUpload)

	e.GET("/ws/session", s.handleSession)

	s.echo = e
	return s
}

// Handler exposes the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving on addr.
func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

func (s *Server) handleQuestions(c echo.Context) error {
	if cat := c.QueryParam("category"); cat != "" {
		qs := questions.ByCategory(dialogue.Category(cat))
		if qs == nil {
			qs = []questions.Question{}
		}
		return c.JSON(http.StatusOK, qs)
	}
	return c.JSON(http.StatusOK, questions.All())
}

func (s *Server) handleCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, questions.Categories())
}

func (s *Server) handleTips(c echo.Context) error {
	return c.JSON(http.StatusOK, questions.ProTips())
}

// handleRandomTip serves the single rotating tip shown while feedback is
// being generated.
func (s *Server) handleRandomTip(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"tip": questions.RandomProTip()})
}

func (s *Server) handleVisitors(c echo.Context) error {
	count := s.Uplink.VisitorCount(c.Request().Context())
	if count == nil {
		// The counter is cosmetic; absence means the client hides it.
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, map[string]int{"visitorCount": *count})
}

func (s *Server) handleHistoryList(c echo.Context) error {
	records, err := s.Store.ListAll(c.Request().Context())
	if err != nil {
		log.Printf("history list failed: %v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	if records == nil {
		records = []history.Record{}
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleHistoryClear(c echo.Context) error {
	if err := s.Store.ClearAll(c.Request().Context()); err != nil {
		log.Printf("history clear failed: %v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleProfileLoad(c echo.Context) error {
	p, err := s.Store.LoadProfile(c.Request().Context())
	if errors.Is(err, history.ErrNoProfile) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		log.Printf("profile load failed: %v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleProfileSave(c echo.Context) error {
	var p history.Profile
	if err := c.Bind(&p); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if p.CandidateName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "candidateName is required"})
	}
	if err := s.Store.SaveProfile(c.Request().Context(), p); err != nil {
		log.Printf("profile save failed: %v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	// Sign-in logging is best-effort and must not delay the response. It
	// outlives the request, so it gets its own context.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		s.Uplink.LogUser(ctx, dialogue.Profile{
			CandidateName:     p.CandidateName,
			YearsOfExperience: p.YearsOfExperience,
			ResumeLink:        p.ResumeLink,
		})
	}()
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleProfileClear(c echo.Context) error {
	if err := s.Store.ClearProfile(c.Request().Context()); err != nil {
		log.Printf("profile clear failed: %v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusNoContent)
}

type coachRequest struct {
	Question string `json:"question"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Yoe      int    `json:"yoe"`
}

func (s *Server) handleFramework(c echo.Context) error {
	var req coachRequest
	if err := c.Bind(&req); err != nil || req.Question == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	text, err := s.Dialogue.FrameworkExplanation(c.Request().Context(), req.Question, dialogue.Category(req.Category))
	if err != nil {
		log.Printf("framework explanation failed: %v", err)
		return c.NoContent(http.StatusBadGateway)
	}
	return c.JSON(http.StatusOK, map[string]string{"explanation": text})
}

func (s *Server) handleSampleAnswer(c echo.Context) error {
	var req coachRequest
	if err := c.Bind(&req); err != nil || req.Question == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	profile := dialogue.Profile{CandidateName: req.Name, YearsOfExperience: req.Yoe}
	text, err := s.Dialogue.SampleAnswer(c.Request().Context(), req.Question, profile, dialogue.Category(req.Category))
	if err != nil {
		log.Printf("sample answer failed: %v", err)
		return c.NoContent(http.StatusBadGateway)
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": text})
}

func (s *Server) handleResumeUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	f, err := fh.Open()
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	mimeType := fh.Header.Get("Content-Type")
	userName := c.FormValue("userName")
	url, err := s.Uplink.UploadResume(c.Request().Context(), fh.Filename, mimeType, data, userName)
	if err != nil {
		log.Printf("resume upload failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "upload failed"})
	}
	return c.JSON(http.StatusOK, map[string]string{"fileUrl": url})
}
