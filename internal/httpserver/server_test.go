package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ka7eh/wordle-solver/internal/history"
	"github.com/ka7eh/wordle-solver/internal/store"
	"github.com/ka7eh/wordle-solver/internal/words"
)

func newTestServer(t *testing.T, db *history.DB) *Server {
	t.Helper()
	dict, err := words.New([]string{"apple", "angle", "ankle", "table", "crane", "slate"})
	require.NoError(t, err)
	return New(store.NewMemoryStore(), dict, db)
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestDiagnostics(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)
}

func TestNewSession(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("practice with explicit target", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/new", "", map[string]any{
			"mode": "practice", "target": "angle", "seed": 1,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[newSessionRes](t, rec)
		assert.NotEmpty(t, res.SessionID)
		assert.NotEmpty(t, res.Token)
		assert.NotEmpty(t, res.Suggestion)
		assert.Equal(t, 6, res.Candidates)
		assert.Equal(t, 6, res.Limit)
	})

	t.Run("unknown target rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/new", "", map[string]any{
			"mode": "practice", "target": "zzzzz",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad mode rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/new", "", map[string]any{"mode": "duel"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessionAuth(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/session/new", "", map[string]any{
		"mode": "practice", "target": "angle",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[newSessionRes](t, rec)

	t.Run("missing token", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/"+created.SessionID+"/guess", "",
			map[string]any{"guess": "angle"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token scoped to its own session", func(t *testing.T) {
		other := decode[newSessionRes](t, doJSON(t, srv, http.MethodPost, "/session/new", "",
			map[string]any{"mode": "practice", "target": "crane"}))
		rec := doJSON(t, srv, http.MethodPost, "/session/"+created.SessionID+"/guess", other.Token,
			map[string]any{"guess": "angle"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPracticeFlow(t *testing.T) {
	db, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()
	srv := newTestServer(t, db)

	created := decode[newSessionRes](t, doJSON(t, srv, http.MethodPost, "/session/new", "",
		map[string]any{"mode": "practice", "target": "angle", "seed": 1}))
	sid, tok := created.SessionID, created.Token

	t.Run("invalid guess does not consume the budget", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/"+sid+"/guess", tok,
			map[string]any{"guess": "zzzzz"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		tr := decode[transcriptRes](t, doJSON(t, srv, http.MethodGet, "/session/"+sid, tok, nil))
		assert.Zero(t, tr.Guesses)
	})

	t.Run("wrong guess narrows knowledge", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/"+sid+"/guess", tok,
			map[string]any{"guess": "apple"})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[stepRes](t, rec)
		assert.Equal(t, "gbbgg", res.Evaluation)
		assert.Equal(t, "guessing", res.State)
		assert.Equal(t, 1, res.Guesses)
		assert.NotEmpty(t, res.Suggestion)
		assert.Equal(t, 2, res.Candidates, "only angle and ankle survive")
		assert.Empty(t, res.Answer)
	})

	t.Run("solving reveals the answer and persists", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/"+sid+"/guess", tok,
			map[string]any{"guess": "angle"})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[stepRes](t, rec)
		assert.Equal(t, "solved", res.State)
		assert.Equal(t, "ggggg", res.Evaluation)
		assert.Equal(t, "angle", res.Answer)

		stats := decode[history.Stats](t, doJSON(t, srv, http.MethodGet, "/stats", "", nil))
		assert.Equal(t, 1, stats.Played)
		assert.Equal(t, 1, stats.Solved)

		var attempts []history.Attempt
		attempts = decode[[]history.Attempt](t, doJSON(t, srv, http.MethodGet, "/attempts", "", nil))
		require.Len(t, attempts, 1)
		assert.Equal(t, "practice", attempts[0].Mode)
		assert.Equal(t, 2, attempts[0].Guesses)
	})

	t.Run("finished session refuses more guesses", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/"+sid+"/guess", tok,
			map[string]any{"guess": "table"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAssistFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	created := decode[newSessionRes](t, doJSON(t, srv, http.MethodPost, "/session/new", "",
		map[string]any{"mode": "assist", "seed": 5}))
	sid, tok := created.SessionID, created.Token

	t.Run("rejected guess retries without advancing", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/"+sid+"/feedback", tok,
			map[string]any{"guess": created.Suggestion, "rejected": true})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[stepRes](t, rec)
		assert.Equal(t, "guessing", res.State)
		assert.Zero(t, res.Guesses)
		assert.NotEmpty(t, res.Suggestion)
		assert.NotEqual(t, created.Suggestion, res.Suggestion, "banned word must not come back")
	})

	t.Run("external evaluation advances the machine", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/session/"+sid+"/feedback", tok,
			map[string]any{"guess": "slate", "evaluation": "bbbbb"})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[stepRes](t, rec)
		assert.Equal(t, 1, res.Guesses)
	})

	t.Run("all-correct evaluation solves", func(t *testing.T) {
		tr := decode[transcriptRes](t, doJSON(t, srv, http.MethodGet, "/session/"+sid, tok, nil))
		require.Equal(t, "guessing", tr.State)

		rec := doJSON(t, srv, http.MethodPost, "/session/"+sid+"/feedback", tok,
			map[string]any{"guess": "brick", "evaluation": "ggggg"})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[stepRes](t, rec)
		assert.Equal(t, "solved", res.State)
	})

	t.Run("bad evaluation string", func(t *testing.T) {
		other := decode[newSessionRes](t, doJSON(t, srv, http.MethodPost, "/session/new", "",
			map[string]any{"mode": "assist"}))
		rec := doJSON(t, srv, http.MethodPost, "/session/"+other.SessionID+"/feedback", other.Token,
			map[string]any{"guess": "slate", "evaluation": "gyxbg"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("guess endpoint is practice-only", func(t *testing.T) {
		other := decode[newSessionRes](t, doJSON(t, srv, http.MethodPost, "/session/new", "",
			map[string]any{"mode": "assist"}))
		rec := doJSON(t, srv, http.MethodPost, "/session/"+other.SessionID+"/guess", other.Token,
			map[string]any{"guess": "slate"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestStatsDisabled(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodGet, "/stats", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, "/attempts", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
