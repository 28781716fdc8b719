// Package httpapi emulates the monitoring service's HTTP surface in memory.
// It backs the client's integration tests and `cmd/api` for local runs.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/cronbeat/internal/domain"
	apimw "github.com/hamed0406/cronbeat/internal/httpapi/middleware"
	"github.com/hamed0406/cronbeat/internal/notify"
	"github.com/hamed0406/cronbeat/internal/repo"
)

const defaultGracePeriod = 60

type Server struct {
	Logger   *zap.Logger
	Monitors repo.MonitorStore
	Events   repo.EventStore

	// Notifier, when set, is told about every fail signal.
	Notifier notify.Notifier
}

func NewServer(l *zap.Logger, ms repo.MonitorStore, es repo.EventStore) *Server {
	return &Server{Logger: l, Monitors: ms, Events: es}
}

// Router wires the routes. With no keys every request is accepted;
// rpm <= 0 disables rate limiting.
func (s *Server) Router(keys apimw.Keys, rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(rpm, burst))

		// Key embedded in the path; no header expected.
		r.Get("/ping/{key}/{apiKey}", s.handlePathAuthPing(keys))
		r.Post("/ping/{key}/{apiKey}", s.handlePathAuthPing(keys))

		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireKey(keys))

			for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodPut} {
				r.Method(m, "/ping/{key}", http.HandlerFunc(s.handlePing))
			}
			r.Post("/ping/{key}/start", s.handleSignal(domain.EventStart))
			r.Post("/ping/{key}/complete", s.handleSignal(domain.EventComplete))
			r.Post("/ping/{key}/fail", s.handleSignal(domain.EventFail))

			r.Post("/api/sync", s.handleSync)
			r.Get("/api/monitors", s.handleListMonitors)
			r.Get("/api/monitors/{key}/events", s.handleListEvents)
		})
	})

	return r
}

// monitorKey returns the decoded key. chi matches on RawPath when the request
// path carries escapes such as %2F, so params are still encoded in that case.
func monitorKey(r *http.Request) (string, error) {
	return pathParam(r, "key")
}

func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	key, err := monitorKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad monitor key")
		return
	}
	s.recordPing(w, r, key)
}

func (s *Server) handlePathAuthPing(keys apimw.Keys) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := monitorKey(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad monitor key")
			return
		}
		apiKey, err := pathParam(r, "apiKey")
		if err != nil || !keys.Has(apiKey) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.recordPing(w, r, key)
	}
}

func (s *Server) recordPing(w http.ResponseWriter, r *http.Request, key string) {
	if !s.known(w, r, key) {
		return
	}
	ev := &domain.Event{MonitorKey: key, Kind: domain.EventPing, Method: r.Method, At: time.Now().UTC()}
	if err := s.Events.Append(r.Context(), ev); err != nil {
		s.Logger.Warn("event_append_error", zap.String("monitor", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not record ping")
		return
	}
	s.Logger.Info("ping_received", zap.String("monitor", key), zap.String("method", r.Method))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleSignal(kind domain.EventKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := monitorKey(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad monitor key")
			return
		}
		if !s.known(w, r, key) {
			return
		}
		q := r.URL.Query()
		ev := &domain.Event{
			MonitorKey: key,
			Kind:       kind,
			Method:     r.Method,
			Schedule:   q.Get("schedule"),
			Message:    q.Get("message"),
			At:         time.Now().UTC(),
		}
		if err := s.Events.Append(r.Context(), ev); err != nil {
			s.Logger.Warn("event_append_error", zap.String("monitor", key), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not record signal")
			return
		}
		s.Logger.Info("signal_received",
			zap.String("monitor", key),
			zap.String("signal", string(kind)),
			zap.String("message", ev.Message),
		)
		if kind == domain.EventFail {
			s.notifyFailure(r, ev)
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) notifyFailure(r *http.Request, ev *domain.Event) {
	if s.Notifier == nil {
		return
	}
	text := ev.Message
	if text == "" {
		text = "no message"
	}
	if err := s.Notifier.Send(r.Context(), "cron job failed: "+ev.MonitorKey, text); err != nil {
		s.Logger.Warn("notify_error", zap.String("monitor", ev.MonitorKey), zap.Error(err))
	}
}

// known writes 404 and returns false when key is not registered.
func (s *Server) known(w http.ResponseWriter, r *http.Request, key string) bool {
	mon, err := s.Monitors.Get(r.Context(), key)
	if err != nil {
		s.Logger.Warn("monitor_lookup_error", zap.String("monitor", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return false
	}
	if mon == nil {
		s.Logger.Info("ping_unknown_monitor", zap.String("monitor", key))
		writeError(w, http.StatusNotFound, "monitor not found")
		return false
	}
	return true
}

var errEmptySync = errors.New("monitors must not be empty")

func validateSync(req *domain.SyncRequest) (int, error) {
	if len(req.Monitors) == 0 {
		return http.StatusBadRequest, errEmptySync
	}
	for i, m := range req.Monitors {
		if strings.TrimSpace(m.Key) == "" {
			return http.StatusUnprocessableEntity, fmt.Errorf("monitors[%d]: key is required", i)
		}
		if strings.TrimSpace(m.Schedule) == "" {
			return http.StatusUnprocessableEntity, fmt.Errorf("monitors[%d]: schedule is required", i)
		}
	}
	return 0, nil
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req domain.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if code, err := validateSync(&req); err != nil {
		writeError(w, code, err.Error())
		return
	}

	for _, def := range req.Monitors {
		if def.GracePeriod <= 0 {
			def.GracePeriod = defaultGracePeriod
		}
		if def.Name == "" {
			def.Name = def.Key
		}
		mon := &domain.Monitor{MonitorDefinition: def, Source: req.Source}
		if err := s.Monitors.Upsert(r.Context(), mon); err != nil {
			s.Logger.Warn("monitor_upsert_error", zap.String("monitor", def.Key), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not sync")
			return
		}
		s.Logger.Info("monitor_synced",
			zap.String("monitor", def.Key),
			zap.String("schedule", def.Schedule),
			zap.Int("grace_period", def.GracePeriod),
			zap.String("source", req.Source),
		)
	}
	writeJSON(w, http.StatusOK, domain.SyncResponse{Synced: len(req.Monitors)})
}

func (s *Server) handleListMonitors(w http.ResponseWriter, r *http.Request) {
	ms, err := s.Monitors.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	key, err := monitorKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad monitor key")
		return
	}
	evs, err := s.Events.Events(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
