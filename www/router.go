package www

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"cabwatch/engine"
)

type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}

	h.ensureDefaultAdmin(eng.DB())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE
	r.Get("/events", hub.SSEHandler)

	// Auth
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	// API routes (no auth required for read)
	r.Route("/api", func(r chi.Router) {
		r.Get("/fleet", h.apiFleetOverview)
		r.Get("/fleet/vehicle/{callsign}", h.apiVehicle)
		r.Get("/fleet/vehicle/{callsign}/history", h.apiVehicleHistory)
		r.Get("/fleet/positions", h.apiPositions)
		r.Get("/bookings", h.apiBookings)
		r.Get("/status-vocab", h.apiStatusVocab)
		r.Get("/state-changes", h.apiStateChanges)
		r.Get("/health", h.apiHealthCheck)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/api/config", h.apiGetConfig)
		r.Post("/api/config/provider", h.apiSaveProviderConfig)
		r.Post("/api/config/engine", h.apiSaveEngineConfig)
		r.Post("/api/status-vocab/classify", h.apiClassifyStatusToken)
		r.Get("/api/diagnostics", h.apiDiagnostics)
	})

	stopFn := func() {
		hub.Stop()
	}

	return r, stopFn
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.engine.DB().GetAdminUser(creds.Username)
	if err != nil || !checkPassword(user.PasswordHash, creds.Password) {
		h.jsonError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = true
	session.Values["username"] = creds.Username
	if err := session.Save(r, w); err != nil {
		log.Printf("auth: session save error: %v", err)
	}

	h.jsonOK(w, map[string]string{"status": "ok", "username": creds.Username})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = false
	session.Values["username"] = ""
	session.Save(r, w)
	h.jsonOK(w, map[string]string{"status": "ok"})
}
