// Package httpapi is the web surface of the interview flow: code
// redemption, question delivery as audio and answer intake.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kruglovb/ai-interviewer/internal/interview"
	"github.com/kruglovb/ai-interviewer/internal/scoring"
	"github.com/kruglovb/ai-interviewer/internal/session"
	"github.com/kruglovb/ai-interviewer/internal/sheets"
	"github.com/kruglovb/ai-interviewer/internal/speech"
)

const sessionCookie = "session_id"

type Server struct {
	manager *session.Manager
	engine  *interview.Engine
	scorer  *scoring.Engine
	synth   speech.Synthesizer
	stt     speech.Transcriber
	table   sheets.RowStore
	logger  *zap.Logger

	// QuestionAudioPath is the single in-flight question artifact,
	// overwritten on every turn.
	QuestionAudioPath string
	StaticDir         string

	now func() time.Time
}

func NewServer(
	manager *session.Manager,
	engine *interview.Engine,
	scorer *scoring.Engine,
	synth speech.Synthesizer,
	stt speech.Transcriber,
	table sheets.RowStore,
	logger *zap.Logger,
) *Server {
	return &Server{
		manager:           manager,
		engine:            engine,
		scorer:            scorer,
		synth:             synth,
		stt:               stt,
		table:             table,
		logger:            logger,
		QuestionAudioPath: "current_message.wav",
		now:               time.Now,
	}
}

// Router assembles the chi router with the standard middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Timeout(60*time.Second))
	r.Use(s.sweepIdle)

	r.Get("/", s.handleIndex)
	r.Post("/check_code", s.handleCheckCode)
	r.Get("/get_message", s.handleGetMessage)
	r.Get("/get_audio", s.handleGetAudio)
	r.Post("/save_response", s.handleSaveResponse)
	r.Get("/admin/reset_codes", s.handleResetCodes)

	return r
}

// sweepIdle expires idle sessions opportunistically on request entry.
func (s *Server) sweepIdle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.manager.ExpireIdle()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sessionFromRequest(r *http.Request) (*session.Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.manager.Get(cookie.Value)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
