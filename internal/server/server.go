// Package server exposes the debate arena over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/verdict"
	"github.com/lorenzotomasdiez/debate-arena/internal/gemini"
	"github.com/lorenzotomasdiez/debate-arena/internal/logging"
	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
	"github.com/lorenzotomasdiez/debate-arena/internal/vote"
)

const maxBodyBytes = 1 << 20

// Model is the single-shot generation surface used by the passthrough and
// verdict endpoints. It is satisfied by *gemini.Client.
type Model interface {
	Chat(ctx context.Context, req gemini.ChatRequest) (string, error)
	GenerateOnce(ctx context.Context, prompt, mimeType string) (string, error)
}

// Options wires a Server's dependencies.
type Options struct {
	Engine   *debate.Engine
	Personas *persona.Store
	Ledger   *vote.Ledger
	Model    Model
	// StaticDir is served at "/". Empty disables static files.
	StaticDir string
	Logger    *zap.Logger
}

// Server routes arena requests.
type Server struct {
	engine    *debate.Engine
	personas  *persona.Store
	ledger    *vote.Ledger
	model     Model
	judge     *verdict.Judge
	staticDir string
	logger    *zap.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	return &Server{
		engine:    opts.Engine,
		personas:  opts.Personas,
		ledger:    opts.Ledger,
		model:     opts.Model,
		judge:     verdict.NewJudge(opts.Model),
		staticDir: opts.StaticDir,
		logger:    logging.OrNop(opts.Logger),
	}
}

// Handler returns the routed handler with logging and panic recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/debate", s.handleDebate)
	mux.HandleFunc("GET /api/debate/ws", s.handleDebateWS)
	mux.HandleFunc("GET /api/personas", s.handlePersonas)
	mux.HandleFunc("GET /api/votes", s.handleGetVotes)
	mux.HandleFunc("POST /api/votes", s.handlePostVote)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/verdict", s.handleVerdict)
	if s.staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
	}
	return s.accessLog(s.recoverer(mux))
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("writing response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorBody{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
