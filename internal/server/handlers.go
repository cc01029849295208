package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MrWong99/voxedit/internal/document"
	"github.com/MrWong99/voxedit/internal/observe"
	"github.com/MrWong99/voxedit/internal/voicecmd"
)

type sessionResponse struct {
	ID           string             `json:"id"`
	CreatedAt    time.Time          `json:"createdAt"`
	Text         string             `json:"text"`
	Preview      string             `json:"preview,omitempty"`
	CanUndo      bool               `json:"canUndo"`
	CanRedo      bool               `json:"canRedo"`
	IgnoredWords []string           `json:"ignoredWords"`
	Analysis     *document.Analysis `json:"analysis,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

type analyzeRequest struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

type commandRequest struct {
	Utterance string             `json:"utterance"`
	Selection document.Selection `json:"selection"`
}

type commandResponse struct {
	Outcome  *document.Outcome  `json:"outcome"`
	Analysis *document.Analysis `json:"analysis"`
}

type dictationRequest struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

type dictationResponse struct {
	Dictation *document.Dictation `json:"dictation"`
	Analysis  *document.Analysis  `json:"analysis,omitempty"`
}

type wordRequest struct {
	Word string `json:"word"`
}

type suggestResponse struct {
	Word        string   `json:"word"`
	Correct     bool     `json:"correct"`
	Suggestions []string `json:"suggestions"`
}

type parseRequest struct {
	Utterance string `json:"utterance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		writeError(w, r, sessionStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, s.describe(sess, nil))
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.sessions.IDs()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	a, err := sess.Analyze(r.Context(), queryFinal(r))
	if err != nil {
		writeError(w, r, analysisStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(sess, a))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, sessionStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess.SetText(req.Text)
	a, err := sess.Analyze(r.Context(), queryFinal(r))
	if err != nil {
		writeError(w, r, analysisStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(sess, a))
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req commandRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Utterance) == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("utterance must not be empty"))
		return
	}

	out, err := sess.Execute(r.Context(), req.Utterance, req.Selection)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	a, err := sess.Analyze(r.Context(), false)
	if err != nil {
		writeError(w, r, analysisStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Outcome: out, Analysis: a})
}

func (s *Server) handleDictation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req dictationRequest
	if !s.decode(w, r, &req) {
		return
	}

	d, err := sess.Dictate(r.Context(), req.Text, req.IsFinal)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	resp := dictationResponse{Dictation: d}
	if req.IsFinal {
		if resp.Analysis, err = sess.Analyze(r.Context(), false); err != nil {
			writeError(w, r, analysisStatus(err), err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIgnore(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req wordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Word) == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("word must not be empty"))
		return
	}
	sess.IgnoreWord(req.Word)
	writeJSON(w, http.StatusOK, map[string][]string{"ignoredWords": sess.IgnoredWords()})
}

func (s *Server) handleResetIgnored(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.ResetIgnored()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.sessions.Toolkit().Analyzer.Analyze(r.Context(), req.Text, nil, req.Final)
	if err != nil {
		writeError(w, r, analysisStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.decode(w, r, &req) {
		return
	}
	cmd := s.sessions.Toolkit().Parser.Parse(req.Utterance)
	writeJSON(w, http.StatusOK, voicecmd.ToWire(cmd))
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if !s.decode(w, r, &req) {
		return
	}
	word := strings.TrimSpace(req.Word)
	if word == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("word must not be empty"))
		return
	}
	sc := s.sessions.Toolkit().Analyzer.Spell()
	resp := suggestResponse{Word: word, Correct: sc.CheckWord(word), Suggestions: []string{}}
	if !resp.Correct {
		if sugg := sc.Suggest(word); sugg != nil {
			resp.Suggestions = sugg
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// session resolves the {id} path value. It writes a 404 and returns false
// when the session does not exist.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*document.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, sessionStatus(err), err)
		return nil, false
	}
	return sess, true
}

func (s *Server) describe(sess *document.Session, a *document.Analysis) sessionResponse {
	return sessionResponse{
		ID:           sess.ID(),
		CreatedAt:    sess.CreatedAt(),
		Text:         sess.Text(),
		Preview:      sess.Preview(),
		CanUndo:      sess.CanUndo(),
		CanRedo:      sess.CanRedo(),
		IgnoredWords: sess.IgnoredWords(),
		Analysis:     a,
	}
}

// decode reads a JSON request body into v, rejecting unknown fields and
// bodies over the configured size. On failure it writes the error response
// and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

// queryFinal reports whether ?final=true was passed, asking the grammar
// checker to treat the last sentence as complete.
func queryFinal(r *http.Request) bool {
	final, _ := strconv.ParseBool(r.URL.Query().Get("final"))
	return final
}

func sessionStatus(err error) int {
	switch {
	case errors.Is(err, document.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, document.ErrTooManySessions):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func analysisStatus(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		observe.Logger(r.Context()).Error("server: request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
