package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// RegisterDeviceRequest is the payload for POST /api/devices. The user agent comes from the request.
type RegisterDeviceRequest struct {
	Name string `json:"name"`
	Hint string `json:"hint"`
}

// TrustRequest toggles a device's trusted flag.
type TrustRequest struct {
	Trusted bool `json:"trusted"`
}

func (h *Handler) registerDevices(r *mux.Router) {
	r.HandleFunc("/api/devices", h.listDevices).Methods(http.MethodGet)
	r.HandleFunc("/api/devices", h.registerDevice).Methods(http.MethodPost)
	r.HandleFunc("/api/devices/{id}/heartbeat", h.deviceHeartbeat).Methods(http.MethodPost)
	r.HandleFunc("/api/devices/{id}/trust", h.trustDevice).Methods(http.MethodPut)
	r.HandleFunc("/api/devices/{id}", h.deleteDevice).Methods(http.MethodDelete)
}

func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	devices, err := h.svc.Devices.List(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if devices == nil {
		devices = []domain.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *Handler) registerDevice(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req RegisterDeviceRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	hint := req.Hint
	if hint == "" {
		hint = r.Header.Get("Sec-CH-UA-Platform")
	}
	device, created, err := h.svc.Devices.Register(r.Context(), claims.Subject, r.UserAgent(), hint, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, device)
}

func (h *Handler) deviceHeartbeat(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	device, err := h.svc.Devices.Heartbeat(r.Context(), claims.Subject, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (h *Handler) trustDevice(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req TrustRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	device, err := h.svc.Devices.SetTrusted(r.Context(), claims.Subject, mux.Vars(r)["id"], req.Trusted)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (h *Handler) deleteDevice(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if err := h.svc.Devices.Delete(r.Context(), claims.Subject, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
