// Package api is the admin HTTP surface: bot lifecycle, tenant stats, and
// health. Everything under /api requires the operator key.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/analytics"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/supervisor"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/users"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// Handler carries the services the admin endpoints touch.
type Handler struct {
	store  *store.Store
	users  *users.Manager
	sup    *supervisor.Supervisor
	apiKey string
}

func NewHandler(st *store.Store, um *users.Manager, sup *supervisor.Supervisor, apiKey string) *Handler {
	return &Handler{store: st, users: um, sup: sup, apiKey: apiKey}
}

// Router builds the chi router with auth on the /api subtree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(h.requireKey)
		r.Post("/bot/{id}/start", h.startBot)
		r.Post("/bot/{id}/stop", h.stopBot)
		r.Post("/bot/{id}/restart", h.restartBot)
		r.Get("/bot/{id}/status", h.botStatus)
		r.Get("/bots", h.listBots)
		r.Get("/users/{id}/stats", h.userStats)
		r.Delete("/users/{id}", h.deleteUser)
	})
	return r
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (h *Handler) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.apiKey == "" || r.Header.Get("X-API-Key") != h.apiKey {
			Error(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) startBot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.sup.Start(r.Context(), id)
	switch {
	case err == nil:
		JSON(w, http.StatusOK, map[string]any{"user": id, "running": true})
	case errors.Is(err, supervisor.ErrAlreadyRunning):
		Error(w, http.StatusConflict, "bot already running")
	case errors.Is(err, users.ErrNotFound):
		Error(w, http.StatusNotFound, "user not found")
	default:
		Error(w, http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) stopBot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stopped, err := h.sup.Stop(r.Context(), id)
	if err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	JSON(w, http.StatusOK, map[string]any{"user": id, "stopped": stopped})
}

func (h *Handler) restartBot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.sup.Restart(r.Context(), id)
	switch {
	case err == nil:
		JSON(w, http.StatusOK, map[string]any{"user": id, "running": true})
	case errors.Is(err, users.ErrNotFound):
		Error(w, http.StatusNotFound, "user not found")
	default:
		Error(w, http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) botStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := h.sup.Status(r.Context(), id)
	if err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !st.Exists {
		Error(w, http.StatusNotFound, "user not found")
		return
	}
	JSON(w, http.StatusOK, st)
}

func (h *Handler) listBots(w http.ResponseWriter, r *http.Request) {
	all, err := h.users.List(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	running := map[string]bool{}
	for _, id := range h.sup.ListActive() {
		running[id] = true
	}
	type row struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Active   bool   `json:"active"`
		Running  bool   `json:"running"`
	}
	out := make([]row, 0, len(all))
	for _, u := range all {
		out = append(out, row{
			UserID:   u.UserID,
			Username: u.Username,
			Active:   u.BotActive,
			Running:  running[u.UserID],
		})
	}
	JSON(w, http.StatusOK, out)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.users.Get(r.Context(), id); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			Error(w, http.StatusNotFound, "user not found")
			return
		}
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := h.sup.Stop(r.Context(), id); err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	JSON(w, http.StatusOK, map[string]any{"user": id, "deleted": true})
}

func (h *Handler) userStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.users.Get(r.Context(), id); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			Error(w, http.StatusNotFound, "user not found")
			return
		}
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	st, err := h.store.Load(r.Context(), id)
	if err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	JSON(w, http.StatusOK, analytics.Summarize(st, timeNow()))
}
