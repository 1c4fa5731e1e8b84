package autocab

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testServer(handler http.HandlerFunc) (*httptest.Server, *Client) {
	srv := httptest.NewServer(handler)
	client := NewClient(srv.URL, "test-key", 5*time.Second)
	return srv, client
}

func TestGetVehicleStatuses(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vehicles/status" {
			t.Errorf("path = %q, want /vehicles/status", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("X-Api-Key = %q, want test-key", got)
		}
		json.NewEncoder(w).Encode(VehiclesStatusResponse{
			Response: Response{Code: 0},
			Report: []VehicleStatusReport{
				{Callsign: "17", VehicleStatus: "AvailableNotInQueue", Zone: "north"},
				{Callsign: "21", VehicleStatus: "BusyGoingToPickup"},
			},
		})
	})
	defer srv.Close()

	report, err := client.GetVehicleStatuses()
	if err != nil {
		t.Fatalf("GetVehicleStatuses: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("len = %d, want 2", len(report))
	}
	if report[0].Callsign != "17" {
		t.Errorf("Callsign = %q, want 17", report[0].Callsign)
	}
	if report[1].VehicleStatus != "BusyGoingToPickup" {
		t.Errorf("VehicleStatus = %q, want BusyGoingToPickup", report[1].VehicleStatus)
	}
}

func TestGetVehicleStatuses_Error(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Code: 3, Msg: "not authorized"})
	})
	defer srv.Close()

	if _, err := client.GetVehicleStatuses(); err == nil {
		t.Fatal("expected error for non-zero response code")
	}
}

func TestGetActiveBookings(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookings/active" {
			t.Errorf("path = %q, want /bookings/active", r.URL.Path)
		}
		json.NewEncoder(w).Encode(BookingsResponse{
			Response: Response{Code: 0},
			Bookings: []BookingReport{
				{ID: "384781", Capabilities: &BookingConstraint{RequestedVehicles: []int{42}}},
			},
		})
	})
	defer srv.Close()

	bookings, err := client.GetActiveBookings()
	if err != nil {
		t.Fatalf("GetActiveBookings: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("len = %d, want 1", len(bookings))
	}
	if bookings[0].ID != "384781" {
		t.Errorf("ID = %q, want 384781", bookings[0].ID)
	}
	if got := bookings[0].Capabilities.RequestedVehicles; len(got) != 1 || got[0] != 42 {
		t.Errorf("RequestedVehicles = %v, want [42]", got)
	}
}

func TestPenaltyInfoMalformed(t *testing.T) {
	// The feed sometimes emits penalty with the wrong shape; the record
	// must survive with the penalty treated as absent.
	raw := []byte(`{"callsign":"17","vehicleStatus":"Available","penalty":"suspended"}`)
	var report VehicleStatusReport
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p := report.PenaltyInfo(); p != nil {
		t.Errorf("PenaltyInfo = %+v, want nil for malformed penalty", p)
	}
}

func TestPenaltyInfoWellFormed(t *testing.T) {
	raw := []byte(`{"callsign":"17","vehicleStatus":"Available","penalty":{"breakReason":"lunch","breakFinishTime":"2026-03-14T13:30:00Z","penaltyReason":""}}`)
	var report VehicleStatusReport
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p := report.PenaltyInfo()
	if p == nil {
		t.Fatal("PenaltyInfo = nil, want parsed penalty")
	}
	if p.BreakReason != "lunch" {
		t.Errorf("BreakReason = %q, want lunch", p.BreakReason)
	}
}

func TestPenaltyInfoSentinel(t *testing.T) {
	raw := []byte(`{"callsign":"17","penalty":{"breakFinishTime":"0001-01-01T00:00:00+00:00"}}`)
	var report VehicleStatusReport
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p := report.PenaltyInfo()
	if p == nil {
		t.Fatal("PenaltyInfo = nil, want parsed penalty")
	}
	if p.BreakFinishTime.Year() != 1 {
		t.Errorf("BreakFinishTime year = %d, want 1 (sentinel preserved as-is)", p.BreakFinishTime.Year())
	}
}

func TestPing(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ping" {
			t.Errorf("path = %q, want /ping", r.URL.Path)
		}
		json.NewEncoder(w).Encode(PingResponse{Response: Response{Code: 0}, Product: "Ghost", Version: "9.2"})
	})
	defer srv.Close()

	resp, err := client.Ping()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if resp.Product != "Ghost" {
		t.Errorf("Product = %q, want Ghost", resp.Product)
	}
}

func TestCheckResponse(t *testing.T) {
	if err := checkResponse(&Response{Code: 0, Msg: "ok"}); err != nil {
		t.Errorf("code 0: %v", err)
	}
	if err := checkResponse(&Response{Code: 1, Msg: "fail"}); err == nil {
		t.Error("code 1: expected error")
	}
}
