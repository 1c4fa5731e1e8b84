package classify

import (
	"fmt"
	"strings"
	"time"

	"cabwatch/fleet"
)

// PauseConfig holds the empirically-derived pause detection constants.
// Several of these were reverse-engineered from one deployment's observed
// behavior; treat them as configurable hypotheses, not domain truths.
type PauseConfig struct {
	// GPSStaleness is how old a GPS fix must be (strictly older) before a
	// vehicle is treated as paused.
	GPSStaleness time.Duration

	// AnomalousQueuePosition is a queue position the upstream platform
	// emits for vehicles on break. Tied to one platform's internal
	// numbering.
	AnomalousQueuePosition int

	// DynamicThresholdFallback is the typical active fleet size, used for
	// the queue-position threshold when the per-zone active count is
	// unavailable.
	DynamicThresholdFallback int

	// TreatNoDataAsBreak enables the no-data pause default. Only safe when
	// the platform emits "no data" specifically for off-shift vehicles,
	// never for vehicles that are mid-sync.
	TreatNoDataAsBreak bool
}

// DefaultPauseConfig returns the reference deployment's constants.
func DefaultPauseConfig() PauseConfig {
	return PauseConfig{
		GPSStaleness:             20 * time.Minute,
		AnomalousQueuePosition:   4,
		DynamicThresholdFallback: 7,
	}
}

// ZoneActiveUnknown marks the per-zone active vehicle count as unavailable,
// switching the dynamic queue threshold to its configured fallback.
const ZoneActiveUnknown = -1

// PauseResult reports whether a pause heuristic fired and which one.
type PauseResult struct {
	Paused     bool
	Reason     string
	Confidence Confidence
}

// pauseInput is the evaluation context handed to each pause rule.
type pauseInput struct {
	snap       fleet.VehicleSnapshot
	state      State
	lastSeen   time.Time // carried-forward GPS timestamp; zero = never reported
	zoneActive int       // active vehicles in the snapshot's zone; ZoneActiveUnknown if not derivable
	now        time.Time
	cfg        PauseConfig
}

// pauseRule is one predicate+outcome pair. Rules are evaluated in order and
// the first one that fires wins.
type pauseRule struct {
	name  string
	fires func(in pauseInput) (bool, Confidence)
}

// Detector applies the pause/break heuristics after classification. If a
// rule fires the vehicle's final state becomes Break regardless of what the
// classifier said.
type Detector struct {
	cfg   PauseConfig
	rules []pauseRule
}

// NewDetector builds a detector with the standard rule order.
func NewDetector(cfg PauseConfig) *Detector {
	d := &Detector{cfg: cfg}
	d.rules = []pauseRule{
		{name: "gps-stale", fires: d.gpsStale},
		{name: "status-token", fires: d.statusToken},
		{name: "penalty", fires: d.penalty},
		{name: "anomalous-queue-position", fires: d.anomalousQueuePosition},
		{name: "queue-position-threshold", fires: d.queueThreshold},
	}
	return d
}

// Detect evaluates the heuristics for one vehicle. lastSeen is the
// carried-forward GPS timestamp for the callsign (zero if the vehicle has
// never reported a fix); zoneActive is the count of non-offline vehicles in
// the same zone, or ZoneActiveUnknown.
//
// A vehicle classified Offline is never downgraded to Break by the ordinary
// rules; only the explicit no-data default may reclassify it, and only when
// the deployment has confirmed the platform emits no-data for off-shift
// vehicles.
func (d *Detector) Detect(snap fleet.VehicleSnapshot, state State, lastSeen time.Time, zoneActive int, now time.Time) PauseResult {
	if state == StateOffline {
		if snap.NoData && d.cfg.TreatNoDataAsBreak {
			return PauseResult{Paused: true, Reason: "pause:no-data-default", Confidence: ConfidenceLow}
		}
		return PauseResult{}
	}

	in := pauseInput{snap: snap, state: state, lastSeen: lastSeen, zoneActive: zoneActive, now: now, cfg: d.cfg}
	for _, rule := range d.rules {
		if fired, conf := rule.fires(in); fired {
			return PauseResult{Paused: true, Reason: "pause:" + rule.name, Confidence: conf}
		}
	}
	return PauseResult{}
}

// gpsStale fires when the vehicle stopped reporting GPS fixes. A vehicle
// that never reported at all is not stale: only "stopped reporting" counts.
// The comparison is strictly greater-than, so a fix exactly at the boundary
// does not fire.
func (d *Detector) gpsStale(in pauseInput) (bool, Confidence) {
	ts := in.lastSeen
	if in.snap.Coordinates != nil {
		ts = in.snap.Coordinates.Timestamp
	}
	if ts.IsZero() {
		return false, ""
	}
	return in.now.Sub(ts) > in.cfg.GPSStaleness, ConfidenceHigh
}

// statusToken fires on an explicit "break" or "pause" token in the raw
// status, which wins over any contradictory availability keyword the
// classifier may have matched.
func (d *Detector) statusToken(in pauseInput) (bool, Confidence) {
	status := normalize(in.snap.RawStatus)
	for _, tok := range strings.FieldsFunc(status, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/' || r == ','
	}) {
		if tok == "break" || tok == "pause" || tok == "paused" {
			return true, ConfidenceHigh
		}
	}
	// Upstream also concatenates: "OnBreak", "BreakRequested".
	return strings.Contains(status, "break") || strings.Contains(status, "pause"), ConfidenceHigh
}

// penalty fires when the penalty object carries a real break signal. The
// upstream sentinel 0001-01-01T00:00:00+00:00 means "finish time not set"
// and must not be treated as a timestamp.
func (d *Detector) penalty(in pauseInput) (bool, Confidence) {
	p := in.snap.Penalty
	if p == nil {
		return false, ""
	}
	if !p.BreakFinishTime.IsZero() && p.BreakFinishTime.Year() > 1 {
		return true, ConfidenceHigh
	}
	if p.BreakReason != "" {
		return true, ConfidenceHigh
	}
	if p.PenaltyReason == "Break" {
		return true, ConfidenceHigh
	}
	return false, ""
}

// anomalousQueuePosition fires on the fixed queue position the platform has
// been observed to emit for vehicles on break.
func (d *Detector) anomalousQueuePosition(in pauseInput) (bool, Confidence) {
	if in.snap.QueuePosition == nil || in.cfg.AnomalousQueuePosition == 0 {
		return false, ""
	}
	return *in.snap.QueuePosition == in.cfg.AnomalousQueuePosition, ConfidenceHigh
}

// queueThreshold fires when a vehicle's queue position exceeds the number of
// vehicles actually competing in its zone: a queue cannot rank a vehicle
// beyond its own length. With no zone count available the configured fleet
// typical is used instead at low confidence.
func (d *Detector) queueThreshold(in pauseInput) (bool, Confidence) {
	if in.snap.QueuePosition == nil {
		return false, ""
	}
	threshold := in.zoneActive
	conf := ConfidenceHigh
	if threshold == ZoneActiveUnknown {
		threshold = in.cfg.DynamicThresholdFallback
		conf = ConfidenceLow
	}
	if threshold <= 0 {
		return false, ""
	}
	return *in.snap.QueuePosition > threshold, conf
}

// Apply folds a pause result into a classified vehicle.
func (r PauseResult) Apply(cv ClassifiedVehicle) ClassifiedVehicle {
	if !r.Paused {
		return cv
	}
	cv.State = StateBreak
	cv.Color = colorFor(StateBreak)
	if r.Confidence != "" && r.Confidence != ConfidenceHigh {
		cv.Confidence = r.Confidence
	}
	cv.Reasons = append(cv.Reasons, r.Reason)
	return cv
}

// RuleNames returns the detector's rule order, for diagnostics endpoints.
func (d *Detector) RuleNames() []string {
	names := make([]string, len(d.rules))
	for i, r := range d.rules {
		names[i] = r.name
	}
	return names
}

func (c PauseConfig) String() string {
	return fmt.Sprintf("gps_staleness=%s anomalous_queue_position=%d dynamic_threshold_fallback=%d treat_no_data_as_break=%t",
		c.GPSStaleness, c.AnomalousQueuePosition, c.DynamicThresholdFallback, c.TreatNoDataAsBreak)
}
