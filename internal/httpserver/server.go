// internal/httpserver/server.go
//
// HTTP wiring for the solver-as-a-service API.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", POST /session/new.
//   - Session endpoints (require a session token): guess, feedback, transcript.
//   - History endpoints: /stats, /attempts.
//   - Signed HS256 session tokens (no user accounts; a token is scoped to
//     exactly one session).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - Sessions live in the store between requests; finished attempts are
//     persisted to history best-effort (a failed write never fails the
//     request).

package httpserver

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ka7eh/wordle-solver/internal/history"
	"github.com/ka7eh/wordle-solver/internal/store"
	"github.com/ka7eh/wordle-solver/internal/words"
)

// Server bundles router, live-session store, dictionary, and attempt log.
type Server struct {
	r     *chi.Mux
	store store.Store
	dict  words.Dictionary
	db    *history.DB // nil when history is disabled
}

// New constructs a Server, installs middleware, and registers routes.
// db may be nil; the history endpoints then report history_disabled and
// finished attempts are dropped.
func New(st store.Store, dict words.Dictionary, db *history.DB) *Server {
	s := &Server{r: chi.NewRouter(), store: st, dict: dict, db: db}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-solver","endpoints":["/health","POST /session/new","POST /session/{id}/guess","POST /session/{id}/feedback","GET /session/{id}","/stats","/attempts"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Debug: dictionary size
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"words": s.dict.Len()})
	})

	// Session lifecycle
	s.r.Post("/session/new", s.handleNewSession)
	s.r.Route("/session/{id}", func(r chi.Router) {
		r.Use(s.requireSessionToken)
		r.Post("/guess", s.handleGuess)
		r.Post("/feedback", s.handleFeedback)
		r.Get("/", s.handleTranscript)
	})

	// History
	s.r.Get("/stats", s.handleStats)
	s.r.Get("/attempts", s.handleAttempts)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// recorder returns the attempt log, or a discard sink when history is off.
func (s *Server) recorder() history.Recorder {
	if s.db == nil {
		return history.Discard{}
	}
	return s.db
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSessionToken enforces a bearer token whose sid claim matches the
// session id in the URL. Tokens are minted by /session/new and are valid
// for that single session.
func (s *Server) requireSessionToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			http.Error(w, `{"error":"missing_token"}`, http.StatusUnauthorized)
			return
		}
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return jwtSecret(), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
			return
		}
		sid, _ := claims["sid"].(string)
		if sid == "" || sid != chi.URLParam(r, "id") {
			http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ JWT ----------------------------------------

// jwtSecret returns the HMAC signing key from JWT_SECRET.
func jwtSecret() []byte {
	return []byte(getEnv("JWT_SECRET", "dev_secret_change_me"))
}

// signSessionToken creates an HS256 token scoped to one session id.
// Expiry is SESSION_TTL_MIN minutes (default 120); a live session outlasting
// its token has to be restarted, which is fine for a six-guess game.
func signSessionToken(sessionID string) (string, error) {
	ttl := 120
	if v := os.Getenv("SESSION_TTL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"exp": now.Add(time.Duration(ttl) * time.Minute).Unix(),
		"iat": now.Unix(),
	})
	return t.SignedString(jwtSecret())
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	a := r.Header.Get("Authorization")
	if len(a) > len(prefix) && a[:len(prefix)] == prefix {
		return a[len(prefix):]
	}
	return ""
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
