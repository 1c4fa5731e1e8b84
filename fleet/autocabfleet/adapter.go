package autocabfleet

import (
	"time"

	"cabwatch/autocab"
	"cabwatch/fleet"
)

// Config holds the configuration for creating an Autocab adapter.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Adapter wraps an autocab.Client to implement fleet.SnapshotSource.
type Adapter struct {
	client *autocab.Client
}

// New creates a new Autocab adapter.
func New(cfg Config) *Adapter {
	return &Adapter{
		client: autocab.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
	}
}

func (a *Adapter) FetchVehicles() ([]fleet.VehicleSnapshot, error) {
	report, err := a.client.GetVehicleStatuses()
	if err != nil {
		return nil, err
	}
	snaps := make([]fleet.VehicleSnapshot, len(report))
	for i, r := range report {
		snaps[i] = mapVehicle(r)
	}
	return snaps, nil
}

func (a *Adapter) FetchBookings() ([]fleet.BookingRecord, error) {
	bookings, err := a.client.GetActiveBookings()
	if err != nil {
		return nil, err
	}
	records := make([]fleet.BookingRecord, len(bookings))
	for i, b := range bookings {
		records[i] = mapBooking(b)
	}
	return records, nil
}

func (a *Adapter) Ping() error {
	_, err := a.client.Ping()
	return err
}

func (a *Adapter) Name() string {
	return "Autocab Ghost"
}

func (a *Adapter) Reconfigure(cfg fleet.ReconfigureParams) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	a.client.Reconfigure(cfg.BaseURL, cfg.APIKey, timeout)
}

// AutocabClient returns the underlying client for vendor-specific operations
// that don't belong in the fleet interface.
func (a *Adapter) AutocabClient() *autocab.Client {
	return a.client
}
