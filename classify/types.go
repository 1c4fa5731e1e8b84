package classify

// State is the canonical operational state derived for a vehicle.
type State string

const (
	StateAvailable State = "available"
	StateBusy      State = "busy"
	StateEnRoute   State = "en_route"
	StateBreak     State = "break"
	StateOffline   State = "offline"
	StateUnknown   State = "unknown"
)

// Color is the display color the admin UI keys off a vehicle's state.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorGray   Color = "gray"
)

// Confidence indicates how the state was derived. Low means an estimation
// fallback or missing data, not a direct status match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ClassifiedVehicle is the per-vehicle output of one classification pass.
// Recomputed fresh on every poll; never persisted.
type ClassifiedVehicle struct {
	Callsign   string     `json:"callsign"`
	Zone       string     `json:"zone,omitempty"`
	State      State      `json:"state"`
	Color      Color      `json:"color"`
	Confidence Confidence `json:"confidence"`

	// Reasons records which rule fired, in order, for diagnostics. The
	// first entry is the classifier's match; pause overrides append.
	Reasons []string `json:"reasons,omitempty"`
}

func colorFor(s State) Color {
	switch s {
	case StateAvailable:
		return ColorGreen
	case StateEnRoute:
		return ColorYellow
	case StateBusy:
		return ColorRed
	default:
		return ColorGray
	}
}
