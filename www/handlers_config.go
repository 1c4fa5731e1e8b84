package www

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// apiGetConfig returns the live configuration with secrets redacted.
func (h *Handlers) apiGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.AppConfig()
	h.jsonOK(w, map[string]any{
		"provider": map[string]any{
			"base_url":      cfg.Provider.BaseURL,
			"poll_interval": cfg.Provider.PollInterval.String(),
			"timeout":       cfg.Provider.Timeout.String(),
			"api_key_set":   cfg.Provider.APIKey != "",
		},
		"engine": cfg.Engine,
		"messaging": map[string]any{
			"backend":         cfg.Messaging.Backend,
			"fleet_topic":     cfg.Messaging.FleetTopic,
			"positions_topic": cfg.Messaging.PositionsTopic,
		},
	})
}

func (h *Handlers) apiSaveProviderConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BaseURL      string `json:"base_url"`
		APIKey       string `json:"api_key"`
		PollInterval string `json:"poll_interval"`
		Timeout      string `json:"timeout"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg := h.engine.AppConfig()
	if req.BaseURL != "" {
		cfg.Provider.BaseURL = req.BaseURL
	}
	if req.APIKey != "" {
		cfg.Provider.APIKey = req.APIKey
	}
	if d, err := time.ParseDuration(req.PollInterval); err == nil && d > 0 {
		cfg.Provider.PollInterval = d
	}
	if d, err := time.ParseDuration(req.Timeout); err == nil && d > 0 {
		cfg.Provider.Timeout = d
	}

	if err := cfg.Save(h.engine.ConfigPath()); err != nil {
		log.Printf("config: save: %v", err)
	}
	h.engine.ReconfigureProvider()

	log.Printf("config: provider updated by %s", h.getUsername(r))
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiSaveEngineConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PauseGPSStaleness             string   `json:"pause_gps_staleness"`
		PauseAnomalousQueuePosition   *int     `json:"pause_anomalous_queue_position"`
		PauseDynamicThresholdFallback *int     `json:"pause_dynamic_threshold_fallback"`
		TreatNoDataAsBreak            *bool    `json:"treat_no_data_as_break"`
		SuggestionMinConfidence       *float64 `json:"suggestion_min_confidence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg := h.engine.AppConfig()
	if d, err := time.ParseDuration(req.PauseGPSStaleness); err == nil && d > 0 {
		cfg.Engine.PauseGPSStaleness = d
	}
	if req.PauseAnomalousQueuePosition != nil {
		cfg.Engine.PauseAnomalousQueuePosition = *req.PauseAnomalousQueuePosition
	}
	if req.PauseDynamicThresholdFallback != nil {
		cfg.Engine.PauseDynamicThresholdFallback = *req.PauseDynamicThresholdFallback
	}
	if req.TreatNoDataAsBreak != nil {
		cfg.Engine.TreatNoDataAsBreak = *req.TreatNoDataAsBreak
	}
	if req.SuggestionMinConfidence != nil {
		cfg.Engine.SuggestionMinConfidence = *req.SuggestionMinConfidence
	}

	if err := cfg.Save(h.engine.ConfigPath()); err != nil {
		log.Printf("config: save: %v", err)
	}

	log.Printf("config: engine tunables updated by %s (restart required for pause rules)", h.getUsername(r))
	h.jsonOK(w, map[string]string{"status": "ok"})
}
