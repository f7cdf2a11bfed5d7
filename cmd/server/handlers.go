package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/rank-ladder/internal/ladder"
	"github.com/xtding233/rank-ladder/internal/rpc"
)

type gamesResp struct {
	P      float64 `json:"p"`
	Rank   string  `json:"rank"`
	Next   string  `json:"next"`
	Mode   string  `json:"mode"`
	Format string  `json:"format"`
	Games  float64 `json:"games"`
	Err    string  `json:"err,omitempty"`
}

type simResp struct {
	gamesResp
	Stats *ladder.Stats `json:"stats,omitempty"`
}

type stepsResp struct {
	Mode  string                      `json:"mode"`
	Ranks map[string]ladder.RankRules `json:"ranks,omitempty"`
	Err   string                      `json:"err,omitempty"`
}

type handlers struct {
	svc *rpc.Service
}

func parseFloat(r *http.Request, key string) (float64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseUint(r *http.Request, key string) (uint64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

// parseQuery reads p, rank, mode, format, protection, trials, seed and
// games_per_match. It writes the error response itself and returns false
// when the request is unusable.
func parseQuery(w http.ResponseWriter, r *http.Request) (rpc.Query, bool) {
	p, ok, msg := parseFloat(r, "p")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return rpc.Query{}, false
	}
	if !ok {
		http.Error(w, "missing param p", http.StatusBadRequest)
		return rpc.Query{}, false
	}
	name := r.URL.Query().Get("rank")
	if name == "" {
		http.Error(w, "missing param rank", http.StatusBadRequest)
		return rpc.Query{}, false
	}
	rank, err := ladder.ParseRank(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return rpc.Query{}, false
	}
	q := rpc.NewQuery(p, rank)

	if s := r.URL.Query().Get("mode"); s != "" {
		if q.Mode, err = ladder.ParseMode(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return rpc.Query{}, false
		}
	}
	if s := r.URL.Query().Get("format"); s != "" {
		if q.Format, err = ladder.ParseFormat(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return rpc.Query{}, false
		}
	}

	// optional overrides
	protection, ok, msg := parseInt(r, "protection")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return rpc.Query{}, false
	}
	if ok {
		q.Protection = &protection
	}
	trials, ok, msg := parseInt(r, "trials")
	if msg != "" || (ok && trials <= 0) {
		http.Error(w, "missing/invalid param trials", http.StatusBadRequest)
		return rpc.Query{}, false
	}
	if ok {
		q.Trials = &trials
	}
	seed, ok, msg := parseUint(r, "seed")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return rpc.Query{}, false
	}
	if ok {
		q.Seed = &seed
	}
	gpm, ok, msg := parseFloat(r, "games_per_match")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return rpc.Query{}, false
	}
	if ok {
		q.GamesPerMatch = &gpm
	}
	return q, true
}

func newGamesResp(q rpc.Query) gamesResp {
	return gamesResp{
		P:      q.P,
		Rank:   q.Rank.String(),
		Next:   q.Rank.Next(),
		Mode:   string(q.Mode),
		Format: q.Format.String(),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ladder.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// exact model with tier protection
func (h *handlers) handleExpected(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	resp := newGamesResp(q)
	games, err := h.svc.Expected(r.Context(), q)
	if err != nil {
		resp.Err = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	resp.Games = games
	writeJSON(w, http.StatusOK, resp)
}

// exact model, no tier protection
func (h *handlers) handleNoProtection(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	resp := newGamesResp(q)
	games, err := h.svc.NoProtection(r.Context(), q)
	if err != nil {
		resp.Err = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	resp.Games = games
	writeJSON(w, http.StatusOK, resp)
}

// Monte Carlo estimate
func (h *handlers) handleSimulate(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	resp := simResp{gamesResp: newGamesResp(q)}
	st, err := h.svc.Simulate(r.Context(), q)
	if err != nil {
		resp.Err = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	resp.Games = st.Mean
	resp.Stats = &st
	writeJSON(w, http.StatusOK, resp)
}

// step table of a mode
func (h *handlers) handleSteps(w http.ResponseWriter, r *http.Request) {
	mode := ladder.ModeConstructed
	if s := r.URL.Query().Get("mode"); s != "" {
		m, err := ladder.ParseMode(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode = m
	}
	resp := stepsResp{Mode: string(mode)}
	ranks, err := h.svc.Steps(mode)
	if err != nil {
		resp.Err = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	resp.Ranks = ranks
	writeJSON(w, http.StatusOK, resp)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// withRequestID tags each request with an id and logs it.
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Info("http", "request_id", id, "method", r.Method, "path", r.URL.Path,
			"status", rec.code, "duration", time.Since(start))
	})
}

func newMux(svc *rpc.Service, log *slog.Logger) http.Handler {
	h := &handlers{svc: svc}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /expected", h.handleExpected)
	mux.HandleFunc("GET /no_protection", h.handleNoProtection)
	mux.HandleFunc("GET /simulate", h.handleSimulate)
	mux.HandleFunc("GET /steps", h.handleSteps)
	return withRequestID(mux, log)
}
