// Package api provides the HTTP surface over the energy pipeline.
// GET endpoints are public (read-only observation).
// POST endpoints mutate pipeline parameters and require a bearer token.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/needle-hull/internal/field"
	"github.com/talgya/needle-hull/internal/persistence"
	"github.com/talgya/needle-hull/internal/physics"
	"github.com/talgya/needle-hull/internal/snapshot"
)

// Server serves the pipeline state over HTTP. The engine itself does no
// locking, so every access to it goes through mu. Non-HTTP callers (the
// telemetry ticker, shutdown) must use CurrentState/Recompute so the whole
// process shares this one lock.
type Server struct {
	Eng      *physics.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	mu sync.Mutex
}

// CurrentState returns a copy of the pipeline state under the server's lock.
func (s *Server) CurrentState() physics.PipelineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Eng.State()
}

// Recompute re-runs the pipeline under the server's lock.
func (s *Server) Recompute(ctx context.Context) physics.PipelineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Eng.Recompute(ctx)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Recomputes fan out to collaborators; keep the write rate sane.
	paramLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/v1/field", s.handleField)
	mux.HandleFunc("/api/v1/sweep", s.handleSweep)
	mux.HandleFunc("/api/v1/tolerance", s.handleTolerance)
	mux.HandleFunc("/api/v1/history", s.handleHistory)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/mode", s.adminOnly(RateLimitMiddleware(paramLimiter, s.handleMode)))
	mux.HandleFunc("/api/v1/params", s.adminOnly(RateLimitMiddleware(paramLimiter, s.handleParams)))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// allowedOrigins merges the dashboard dev servers with the
// HULLSIM_CORS_ORIGINS env list.
func allowedOrigins() map[string]struct{} {
	origins := []string{
		"http://localhost:5173",
		"http://localhost:3000",
	}
	origins = append(origins, strings.Split(os.Getenv("HULLSIM_CORS_ORIGINS"), ",")...)

	set := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			set[o] = struct{}{}
		}
	}
	return set
}

// corsMiddleware answers preflights and tags responses for known dashboard
// origins; everything else passes through untagged.
func corsMiddleware(next http.Handler) http.Handler {
	origins := allowedOrigins()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			if _, ok := origins[origin]; ok {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authorized reports whether the request carries the admin bearer token,
// compared in constant time.
func (s *Server) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || len(token) != len(s.AdminKey) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

// adminOnly gates POSTs behind the bearer token. With no key configured the
// mutation endpoints stay read-only.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch {
			case s.AdminKey == "":
				http.Error(w, "admin endpoints disabled (no HULLSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			case !s.authorized(r):
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.CurrentState()
	writeJSON(w, map[string]any{
		"name":                "Needle Hull Mk-1",
		"mode":                st.Mode,
		"overall_status":      st.OverallStatus,
		"power_avg_mw":        st.PowerAvgMW,
		"exotic_mass_kg":      st.ExoticMassKg,
		"zeta":                st.Zeta,
		"compliant":           st.FordRomanCompliance,
		"sectors":             st.SectorCount,
		"concurrent_sectors":  st.ConcurrentSectors,
		"duty_effective":      st.DutyEffective,
		"calibration_clamped": st.CalibrationClamped,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, snapshot.Build(s.CurrentState()))
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	req := field.Request{
		ThetaSteps: queryInt(r, "theta", 64, 1, 512),
		PhiSteps:   queryInt(r, "phi", 32, 1, 256),
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.ShellOffset = f
		}
	}
	if v := r.URL.Query().Get("sector"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.SectorOverride = &n
		}
	}

	samples := field.SampleGrid(s.CurrentState(), req)
	writeJSON(w, map[string]any{
		"count":   len(samples),
		"samples": samples,
	})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	req := physics.DefaultSweepRequest()
	req.Resolution = queryInt(r, "resolution", req.Resolution, 2, 120)
	writeJSON(w, physics.ViabilityGrid(s.CurrentState(), req))
}

func (s *Server) handleTolerance(w http.ResponseWriter, r *http.Request) {
	seed := int64(queryInt(r, "seed", 42, 0, 1<<30))
	tol := 0.05
	if v := r.URL.Query().Get("tol"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 10 {
			tol = f
		}
	}
	writeJSON(w, physics.GapToleranceAudit(s.CurrentState(), seed, tol))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := queryInt(r, "limit", 30, 1, 1000)
	rows, err := s.DB.RecentSnapshots(limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		writeJSON(w, []persistence.SnapshotRow{})
		return
	}
	if rows == nil {
		rows = []persistence.SnapshotRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, map[string]any{"mode": s.CurrentState().Mode, "modes": physics.Modes()})
		return
	}

	var req struct {
		Mode physics.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !physics.KnownMode(req.Mode) {
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	st := s.Eng.SwitchMode(r.Context(), req.Mode)
	s.mu.Unlock()
	slog.Info("mode switched", "mode", req.Mode, "status", st.OverallStatus)

	s.saveHistory(st)
	writeJSON(w, snapshot.Build(st))
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var p physics.Partial
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	st := s.Eng.UpdateParameters(r.Context(), p)
	s.mu.Unlock()
	slog.Info("parameters updated", "mode", st.Mode, "status", st.OverallStatus)

	s.saveHistory(st)
	writeJSON(w, snapshot.Build(st))
}

func (s *Server) saveHistory(st physics.PipelineState) {
	if s.DB == nil {
		return
	}
	if _, err := s.DB.SaveSnapshot(snapshot.Build(st)); err != nil {
		slog.Error("snapshot save failed", "error", err)
	}
}

func queryInt(r *http.Request, key string, def, lo, hi int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= lo && n <= hi {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
