package fleet

import "time"

// SnapshotSource is the vendor-neutral interface for dispatch platforms.
// Implementations wrap vendor-specific APIs (Autocab Ghost, iCabbi, Cordic, etc.).
type SnapshotSource interface {
	// FetchVehicles retrieves the current telemetry snapshot for every vehicle.
	FetchVehicles() ([]VehicleSnapshot, error)

	// FetchBookings retrieves the current active booking records.
	FetchBookings() ([]BookingRecord, error)

	// Ping checks connectivity to the dispatch platform.
	Ping() error

	// Name returns a human-readable name for this platform (e.g. "Autocab Ghost").
	Name() string

	// Reconfigure applies configuration changes at runtime.
	Reconfigure(cfg ReconfigureParams)
}

// ReconfigureParams carries runtime configuration changes for a SnapshotSource.
type ReconfigureParams struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}
