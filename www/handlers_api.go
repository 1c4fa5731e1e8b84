package www

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) apiFleetOverview(w http.ResponseWriter, r *http.Request) {
	ov := h.engine.Overview()
	if ov == nil {
		h.jsonError(w, "no completed poll yet", http.StatusServiceUnavailable)
		return
	}
	h.jsonOK(w, ov)
}

func (h *Handlers) apiVehicle(w http.ResponseWriter, r *http.Request) {
	callsign := chi.URLParam(r, "callsign")
	ov := h.engine.Overview()
	if ov == nil {
		h.jsonError(w, "no completed poll yet", http.StatusServiceUnavailable)
		return
	}
	v, ok := ov.Vehicle(callsign)
	if !ok {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}

	resp := map[string]any{"vehicle": v}
	if entry, ok := h.engine.Vehicles().Get(callsign); ok {
		resp["last_seen_at"] = entry.LastSeenAt
		resp["last_position"] = map[string]float64{"lat": entry.Lat, "lng": entry.Lng}
	}
	h.jsonOK(w, resp)
}

func (h *Handlers) apiVehicleHistory(w http.ResponseWriter, r *http.Request) {
	callsign := chi.URLParam(r, "callsign")
	changes, err := h.engine.DB().ListVehicleStateChanges(callsign, queryLimit(r, 100))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, changes)
}

func (h *Handlers) apiPositions(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.Vehicles().All())
}

func (h *Handlers) apiBookings(w http.ResponseWriter, r *http.Request) {
	ov := h.engine.Overview()
	if ov == nil {
		h.jsonError(w, "no completed poll yet", http.StatusServiceUnavailable)
		return
	}
	h.jsonOK(w, ov.Bookings)
}

func (h *Handlers) apiStatusVocab(w http.ResponseWriter, r *http.Request) {
	var (
		tokens any
		err    error
	)
	if r.URL.Query().Get("family") == "unknown" {
		tokens, err = h.engine.DB().ListUnknownStatusTokens()
	} else {
		tokens, err = h.engine.DB().ListStatusVocab()
	}
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, tokens)
}

func (h *Handlers) apiClassifyStatusToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token  string `json:"token"`
		Family string `json:"family"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.Family == "" {
		h.jsonError(w, "token and family required", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().SetStatusTokenFamily(req.Token, req.Family); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiStateChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := h.engine.DB().ListStateChanges(queryLimit(r, 100))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, changes)
}

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	providerOK := false
	if err := h.engine.Fleet().Ping(); err == nil {
		providerOK = true
	}
	resp := map[string]any{
		"status":    "ok",
		"provider":  providerOK,
		"messaging": h.engine.MsgClient().IsConnected(),
	}
	if ov := h.engine.Overview(); ov != nil {
		resp["last_poll_sequence"] = ov.Sequence
		resp["last_poll_at"] = ov.GeneratedAt
	}
	h.jsonOK(w, resp)
}

func (h *Handlers) apiDiagnostics(w http.ResponseWriter, r *http.Request) {
	recent, _ := h.engine.DB().ListRecentOutbox(queryLimit(r, 50))

	providerOK := false
	if err := h.engine.Fleet().Ping(); err == nil {
		providerOK = true
	}

	h.jsonOK(w, map[string]any{
		"provider_name": h.engine.Fleet().Name(),
		"provider_ok":   providerOK,
		"messaging_ok":  h.engine.MsgClient().IsConnected(),
		"sse_clients":   h.eventHub.ClientCount(),
		"outbox_recent": recent,
	})
}

func queryLimit(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
