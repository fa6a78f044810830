// internal/httpserver/routes_session.go
//
// HTTP routes for solve sessions.
// Exposes the two collaborator modes the solver supports:
//   - practice: the server knows the target, evaluates each guess itself.
//   - assist:   the client plays an external game and relays the per-tile
//     evaluations; the server answers with the next suggestion.
//
// Sessions are held in the store for active play and persisted to the
// attempt log when they finish. Both modes drive the same solver state
// machine; they differ only in where evaluations come from.

package httpserver

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ka7eh/wordle-solver/internal/history"
	"github.com/ka7eh/wordle-solver/internal/solver"
	"github.com/ka7eh/wordle-solver/internal/store"
	"github.com/ka7eh/wordle-solver/internal/wordle"
)

const (
	modePractice = "practice"
	modeAssist   = "assist"
)

// -----------------------------------------------------------------------------
// POST /session/new

type newSessionReq struct {
	Mode   string `json:"mode"`             // "practice" (default) | "assist"
	Target string `json:"target,omitempty"` // practice only; random if empty
	Seed   *int64 `json:"seed,omitempty"`   // reproducible suggestion order
}

type newSessionRes struct {
	SessionID  string `json:"sessionId"`
	Mode       string `json:"mode"`
	Token      string `json:"token"`
	Suggestion string `json:"suggestion"`
	Candidates int    `json:"candidates"`
	Limit      int    `json:"limit"`
}

// handleNewSession creates a solver session, mints its token, and returns
// the opening suggestion.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	mode := req.Mode
	if mode == "" {
		mode = modePractice
	}
	if mode != modePractice && mode != modeAssist {
		http.Error(w, `{"error":"bad_mode"}`, http.StatusBadRequest)
		return
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	target := ""
	if mode == modePractice {
		target = wordle.Normalize(req.Target)
		if target == "" {
			target = s.dict.Random(rng)
		} else if wordle.CheckWord(target) != nil || !s.dict.Contains(target) {
			http.Error(w, `{"error":"invalid_target"}`, http.StatusBadRequest)
			return
		}
	}

	sess := &store.Session{
		ID:        uuid.NewString(),
		Mode:      mode,
		Target:    target,
		Solver:    solver.NewSession(s.dict.Words(), solver.WithRand(rng)),
		CreatedAt: time.Now().UTC(),
	}

	suggestion, ranked, err := sess.Solver.Suggest()
	if err != nil {
		log.Error().Err(err).Msg("initial suggestion")
		http.Error(w, `{"error":"no_candidates"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	token, err := signSessionToken(sess.ID)
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(newSessionRes{
		SessionID:  sess.ID,
		Mode:       mode,
		Token:      token,
		Suggestion: suggestion,
		Candidates: len(ranked),
		Limit:      sess.Solver.Limit(),
	})
}

// -----------------------------------------------------------------------------
// POST /session/{id}/guess  (practice)

type guessReq struct {
	Guess string `json:"guess"`
}

type stepRes struct {
	Guess      string `json:"guess,omitempty"`
	Evaluation string `json:"evaluation,omitempty"` // compact g/y/b
	Marks      []int  `json:"marks,omitempty"`      // 0=absent 1=present 2=correct
	State      string `json:"state"`
	Guesses    int    `json:"guesses"`
	Suggestion string `json:"suggestion,omitempty"` // next guess, while playing
	Candidates int    `json:"candidates"`
	Answer     string `json:"answer,omitempty"` // revealed once finished
}

// handleGuess evaluates a practice guess against the session's target.
// Malformed or out-of-dictionary guesses are 400s that do not consume a
// guess; the evaluation otherwise advances the state machine.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if sess.Mode != modePractice {
		http.Error(w, `{"error":"wrong_mode"}`, http.StatusConflict)
		return
	}

	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	guess := wordle.Normalize(req.Guess)
	if wordle.CheckWord(guess) != nil || !s.dict.Contains(guess) {
		http.Error(w, `{"error":"invalid_guess"}`, http.StatusBadRequest)
		return
	}

	ev := wordle.Evaluate(guess, sess.Target)
	if err := sess.Solver.Record(guess, ev); err != nil {
		if errors.Is(err, solver.ErrFinished) {
			http.Error(w, `{"error":"session_finished"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"invalid_guess"}`, http.StatusBadRequest)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	res := stepRes{
		Guess:      guess,
		Evaluation: ev.String(),
		Marks:      ev.Marks(),
	}
	s.finishStep(r, sess, &res)
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// POST /session/{id}/feedback  (assist)

type feedbackReq struct {
	Guess      string `json:"guess"`
	Evaluation string `json:"evaluation,omitempty"` // compact g/y/b
	Rejected   bool   `json:"rejected,omitempty"`   // external game refused the word
}

// handleFeedback folds an externally produced evaluation into an assist
// session. A rejected guess is banned and retried: no counter advance, no
// knowledge mutation, fresh suggestion in the response.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if sess.Mode != modeAssist {
		http.Error(w, `{"error":"wrong_mode"}`, http.StatusConflict)
		return
	}

	var req feedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	guess := wordle.Normalize(req.Guess)
	if wordle.CheckWord(guess) != nil {
		http.Error(w, `{"error":"invalid_guess"}`, http.StatusBadRequest)
		return
	}

	res := stepRes{Guess: guess}
	if req.Rejected {
		if err := sess.Solver.Reject(guess); err != nil {
			http.Error(w, `{"error":"session_finished"}`, http.StatusConflict)
			return
		}
	} else {
		ev, err := wordle.ParseEvaluation(req.Evaluation)
		if err != nil {
			http.Error(w, `{"error":"bad_evaluation"}`, http.StatusBadRequest)
			return
		}
		if err := sess.Solver.Record(guess, ev); err != nil {
			http.Error(w, `{"error":"session_finished"}`, http.StatusConflict)
			return
		}
		res.Evaluation = ev.String()
		res.Marks = ev.Marks()
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	s.finishStep(r, sess, &res)
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// GET /session/{id}

type transcriptRes struct {
	SessionID string               `json:"sessionId"`
	Mode      string               `json:"mode"`
	State     string               `json:"state"`
	Guesses   int                  `json:"guesses"`
	Limit     int                  `json:"limit"`
	Rejected  int                  `json:"rejected"`
	History   []solver.GuessRecord `json:"history"`
	Knowledge knowledgeRes         `json:"knowledge"`
	Answer    string               `json:"answer,omitempty"`
}

type knowledgeRes struct {
	Confirmed string           `json:"confirmed"` // '_' at unknown positions
	Present   map[string][]int `json:"present"`   // letter -> excluded positions
	Absent    string           `json:"absent"`
}

// handleTranscript returns the full session state: guess history plus a
// snapshot of the accumulated knowledge.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	k := sess.Solver.Knowledge()
	res := transcriptRes{
		SessionID: sess.ID,
		Mode:      sess.Mode,
		State:     sess.Solver.Phase().String(),
		Guesses:   sess.Solver.Count(),
		Limit:     sess.Solver.Limit(),
		Rejected:  sess.Solver.Rejected(),
		History:   sess.Solver.History(),
		Knowledge: knowledgeRes{
			Confirmed: k.Word(),
			Present:   k.PresentLetters(),
			Absent:    k.AbsentLetters(),
		},
	}
	if sess.Solver.Phase() != solver.PhaseGuessing && sess.Mode == modePractice {
		res.Answer = sess.Target
	}
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// GET /stats, GET /attempts

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, `{"error":"history_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	stats, err := s.db.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats query")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, `{"error":"history_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	attempts, err := s.db.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("attempts query")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(attempts)
}

// -----------------------------------------------------------------------------
// shared pieces

// loadSession fetches the session for the {id} URL parameter, writing the
// 404 itself when missing.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// finishStep fills the state portion of a step response and, when the
// session just finished, persists the attempt (best effort, non-fatal).
func (s *Server) finishStep(r *http.Request, sess *store.Session, res *stepRes) {
	sv := sess.Solver
	res.State = sv.Phase().String()
	res.Guesses = sv.Count()

	if sv.Phase() == solver.PhaseGuessing {
		if next, ranked, err := sv.Suggest(); err == nil {
			res.Suggestion = next
			res.Candidates = len(ranked)
		} else {
			log.Warn().Err(err).Str("session", sess.ID).Msg("no next suggestion")
		}
		return
	}

	// terminal state: reveal and persist
	if sess.Mode == modePractice {
		res.Answer = sess.Target
	}
	out := sv.Outcome()
	attempt := history.Attempt{
		ID:         sess.ID,
		Mode:       sess.Mode,
		Target:     sess.Target,
		Outcome:    sv.Phase().String(),
		Guesses:    out.Guesses,
		Rejected:   out.Rejected,
		DurationMS: time.Since(sess.CreatedAt).Milliseconds(),
		StartedAt:  sess.CreatedAt,
	}
	if err := s.recorder().RecordAttempt(r.Context(), attempt); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("record attempt")
	}
}
