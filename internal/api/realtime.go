package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devansh054/dev-pulse-sub000/internal/chat"
)

const defaultChatPage = 50

// PostMessageRequest is the payload for posting into a chat room.
type PostMessageRequest struct {
	Body string `json:"body"`
}

// StartFocusRequest optionally labels a focus session.
type StartFocusRequest struct {
	Label string `json:"label"`
}

func (h *Handler) registerChat(r *mux.Router) {
	r.HandleFunc("/api/chat/rooms", h.chatRooms).Methods(http.MethodGet)
	r.HandleFunc("/api/chat/rooms/{room}/messages", h.chatHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/chat/rooms/{room}/messages", h.chatPost).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/rooms/{room}/ws", h.chatStream).Methods(http.MethodGet)
}

func (h *Handler) registerFocus(r *mux.Router) {
	r.HandleFunc("/api/focus/start", h.focusStart).Methods(http.MethodPost)
	r.HandleFunc("/api/focus/stop", h.focusStop).Methods(http.MethodPost)
	r.HandleFunc("/api/focus/current", h.focusCurrent).Methods(http.MethodGet)
}

func (h *Handler) chatRooms(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Chat.Rooms())
}

func (h *Handler) chatHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}
	limit := queryInt(r, "limit", defaultChatPage)
	if limit > chat.HistoryLimit {
		limit = chat.HistoryLimit
	}
	writeJSON(w, http.StatusOK, h.svc.Chat.History(mux.Vars(r)["room"], limit))
}

func (h *Handler) chatPost(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req PostMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	msg, err := h.svc.Chat.Post(mux.Vars(r)["room"], claims.Subject, claims.Login, req.Body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) chatStream(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	h.svc.Chat.ServeWS(w, r, mux.Vars(r)["room"], claims.Subject, claims.Login, h.log)
}

func (h *Handler) focusStart(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req StartFocusRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	session, err := h.svc.Focus.Start(claims.Subject, req.Label)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) focusStop(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	session, err := h.svc.Focus.Stop(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) focusCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session": h.svc.Focus.Current(claims.Subject)})
}
