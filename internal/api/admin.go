package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// RuntimeStats describes the serving process.
type RuntimeStats struct {
	GoVersion     string  `json:"go_version"`
	Goroutines    int     `json:"goroutines"`
	HeapAlloc     uint64  `json:"heap_alloc_bytes"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	ChatRooms     int     `json:"chat_rooms"`
}

// SystemStats is the admin panel payload.
type SystemStats struct {
	Store   domain.StoreStats `json:"store"`
	Runtime RuntimeStats      `json:"runtime"`
}

func (h *Handler) securityScan(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	token, ok := requireGitHubToken(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Scanner.Run(r.Context(), claims.Subject, token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) adminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.List(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	if id == claims.Subject {
		writeError(w, http.StatusBadRequest, "admins cannot delete themselves")
		return
	}
	if err := h.svc.Users.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.WithFields(logrus.Fields{"admin": claims.Login, "user_id": id}).Info("user deleted")
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	store, err := h.svc.Stats.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	writeJSON(w, http.StatusOK, SystemStats{
		Store: store,
		Runtime: RuntimeStats{
			GoVersion:     runtime.Version(),
			Goroutines:    runtime.NumGoroutine(),
			HeapAlloc:     mem.HeapAlloc,
			UptimeSeconds: time.Since(h.started).Seconds(),
			ChatRooms:     len(h.svc.Chat.Rooms()),
		},
	})
}
