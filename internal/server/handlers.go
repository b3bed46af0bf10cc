package server

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate/verdict"
	"github.com/lorenzotomasdiez/debate-arena/internal/gemini"
	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
	"github.com/lorenzotomasdiez/debate-arena/internal/stream"
	"github.com/lorenzotomasdiez/debate-arena/internal/vote"
)

const generateFailed = "Failed to generate content"

func (s *Server) handleDebate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	run := s.engine.Start(q.Get("takenokoId"), q.Get("kinokoId"))

	sse := stream.NewSSE(w)
	if err := stream.Pipe(run.Events(r.Context()), sse); err != nil {
		s.logger.Debug("debate stream closed", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (s *Server) handleDebateWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ws, ctx, err := stream.Upgrade(r.Context(), w, r)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() {
		if err := ws.Close(); err != nil {
			s.logger.Debug("closing websocket", zap.Error(err))
		}
	}()

	run := s.engine.Start(q.Get("takenokoId"), q.Get("kinokoId"))
	if err := stream.Pipe(run.Events(ctx), ws); err != nil {
		s.logger.Debug("debate stream closed", zap.String("run_id", run.ID), zap.Error(err))
	}
}

type personaEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	resp := make(map[persona.Side][]personaEntry, len(persona.Sides))
	for _, side := range persona.Sides {
		list := s.personas.List(side)
		entries := make([]personaEntry, 0, len(list))
		for _, p := range list {
			entries = append(entries, personaEntry{ID: p.ID, Text: p.Label})
		}
		resp[side] = entries
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVotes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ledger.Tally(r.Context()))
}

func (s *Server) handlePostVote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Faction string `json:"faction"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid faction")
		return
	}
	tally, err := s.ledger.Record(r.Context(), req.Faction)
	if errors.Is(err, vote.ErrInvalidFaction) {
		s.writeError(w, http.StatusBadRequest, "Invalid faction")
		return
	}
	if err != nil {
		s.logger.Error("recording vote", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, tally)
}

type textResponse struct {
	Text string `json:"text"`
}

type chatPart struct {
	Text string `json:"text"`
}

type chatContent struct {
	Role  string     `json:"role"`
	Parts []chatPart `json:"parts"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		History           []chatContent `json:"history"`
		Message           string        `json:"message"`
		SystemInstruction string        `json:"systemInstruction"`
		ResponseMIMEType  string        `json:"responseMimeType"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	history := make([]gemini.Message, 0, len(req.History))
	for _, c := range req.History {
		texts := make([]string, 0, len(c.Parts))
		for _, p := range c.Parts {
			texts = append(texts, p.Text)
		}
		history = append(history, gemini.Message{Role: c.Role, Text: strings.Join(texts, "")})
	}

	text, err := s.model.Chat(r.Context(), gemini.ChatRequest{
		SystemInstruction: req.SystemInstruction,
		History:           history,
		Message:           req.Message,
		ResponseMIMEType:  req.ResponseMIMEType,
	})
	if err != nil {
		s.generationFailed(w, "chat", err)
		return
	}
	s.writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt           string `json:"prompt"`
		ResponseMIMEType string `json:"responseMimeType"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	text, err := s.model.GenerateOnce(r.Context(), req.Prompt, req.ResponseMIMEType)
	if err != nil {
		s.generationFailed(w, "generate", err)
		return
	}
	s.writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Turns []verdict.Line `json:"turns"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, line := range req.Turns {
		if !line.Side.Valid() {
			s.writeError(w, http.StatusBadRequest, "Invalid speakerClass")
			return
		}
	}

	result, err := s.judge.Decide(r.Context(), s.engine.Topic(), req.Turns)
	switch {
	case errors.Is(err, verdict.ErrEmptyTranscript):
		s.writeError(w, http.StatusBadRequest, "turns are required")
	case errors.Is(err, verdict.ErrUnparsable):
		s.logger.Warn("verdict unparsable", zap.Error(err))
		s.writeJSON(w, http.StatusBadGateway, errorBody{Error: generateFailed, Details: err.Error()})
	case err != nil:
		s.generationFailed(w, "verdict", err)
	default:
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) generationFailed(w http.ResponseWriter, op string, err error) {
	s.logger.Error("generation failed", zap.String("op", op), zap.Error(err))
	s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: generateFailed, Details: err.Error()})
}
