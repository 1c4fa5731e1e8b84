package engine

import (
	"log"
	"sync"
	"time"

	"cabwatch/assign"
	"cabwatch/classify"
	"cabwatch/config"
	"cabwatch/fleet"
	"cabwatch/messaging"
	"cabwatch/store"
	"cabwatch/vehiclestate"
)

type LogFunc func(format string, args ...any)

type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	Fleet      fleet.SnapshotSource
	Vehicles   *vehiclestate.Manager
	MsgClient  *messaging.Client
	LogFunc    LogFunc
	Debug      bool
}

type Engine struct {
	cfg        *config.Config
	configPath string
	db         *store.DB
	fleet      fleet.SnapshotSource
	vehicles   *vehiclestate.Manager
	msgClient  *messaging.Client
	detector   *classify.Detector
	resolver   *assign.Resolver
	Events     *EventBus
	logFn      LogFunc
	stopOnce   sync.Once
	stopChan   chan struct{}

	mu       sync.RWMutex
	sequence uint64
	overview *FleetOverview

	providerConnected bool
	msgConnected      bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	eng := c.AppConfig.Engine
	return &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		db:         c.DB,
		fleet:      c.Fleet,
		vehicles:   c.Vehicles,
		msgClient:  c.MsgClient,
		detector: classify.NewDetector(classify.PauseConfig{
			GPSStaleness:             eng.PauseGPSStaleness,
			AnomalousQueuePosition:   eng.PauseAnomalousQueuePosition,
			DynamicThresholdFallback: eng.PauseDynamicThresholdFallback,
			TreatNoDataAsBreak:       eng.TreatNoDataAsBreak,
		}),
		resolver: assign.NewResolver(assign.Config{
			SuggestionMinConfidence: eng.SuggestionMinConfidence,
		}),
		Events:   NewEventBus(),
		logFn:    logFn,
		stopChan: make(chan struct{}),
	}
}

func (e *Engine) Start() {
	e.wireEventHandlers()

	// Seed the carried-forward cache from Redis so staleness detection
	// survives a restart.
	if err := e.vehicles.WarmStart(); err != nil {
		e.logFn("engine: warm start: %v", err)
	}

	// Emit initial connection status
	e.checkConnectionStatus()

	go e.pollLoop()
	go e.connectionHealthLoop()
	if e.cfg.Engine.CacheEvictionAfter > 0 {
		go e.evictionLoop()
	}

	e.logFn("engine: started")
}

func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
	e.logFn("engine: stopped")
}

// Accessors
func (e *Engine) DB() *store.DB                   { return e.db }
func (e *Engine) AppConfig() *config.Config       { return e.cfg }
func (e *Engine) ConfigPath() string              { return e.configPath }
func (e *Engine) Fleet() fleet.SnapshotSource     { return e.fleet }
func (e *Engine) Vehicles() *vehiclestate.Manager { return e.vehicles }
func (e *Engine) MsgClient() *messaging.Client    { return e.msgClient }

// Overview returns the latest successful fleet overview, or nil before
// the first completed pass.
func (e *Engine) Overview() *FleetOverview {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.overview
}

func (e *Engine) pollLoop() {
	interval := e.cfg.Provider.PollInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First pass immediately rather than waiting a full interval.
	e.RunPass()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.RunPass()
		}
	}
}

func (e *Engine) checkConnectionStatus() {
	// Provider
	if err := e.fleet.Ping(); err == nil {
		if !e.providerConnected {
			e.providerConnected = true
			e.Events.Emit(Event{Type: EventProviderConnected, Payload: ConnectionEvent{Detail: e.fleet.Name() + " connected"}})
		}
	} else {
		if e.providerConnected {
			e.providerConnected = false
			e.Events.Emit(Event{Type: EventProviderDisconnected, Payload: ConnectionEvent{Detail: err.Error()}})
		}
	}

	// Messaging
	if e.msgClient.IsConnected() {
		if !e.msgConnected {
			e.msgConnected = true
			e.Events.Emit(Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: "messaging connected"}})
		}
	} else {
		if e.msgConnected {
			e.msgConnected = false
			e.Events.Emit(Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "messaging disconnected"}})
		}
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}

func (e *Engine) evictionLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			if n := e.vehicles.EvictInactive(e.cfg.Engine.CacheEvictionAfter); n > 0 {
				e.logFn("engine: evicted %d inactive vehicles from cache", n)
			}
		}
	}
}

// ReconfigureProvider applies provider config changes live.
func (e *Engine) ReconfigureProvider() {
	e.fleet.Reconfigure(fleet.ReconfigureParams{
		BaseURL: e.cfg.Provider.BaseURL,
		APIKey:  e.cfg.Provider.APIKey,
		Timeout: e.cfg.Provider.Timeout,
	})
	e.logFn("engine: provider reconfigured (%s)", e.fleet.Name())
	e.checkConnectionStatus()
}

// ReconfigureMessaging reconnects messaging with current config.
func (e *Engine) ReconfigureMessaging() {
	if err := e.msgClient.Reconfigure(&e.cfg.Messaging); err != nil {
		e.logFn("engine: messaging reconfigure error: %v", err)
	} else {
		e.logFn("engine: messaging reconfigured")
	}
	e.checkConnectionStatus()
}
