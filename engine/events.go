package engine

const (
	EventPollCompleted EventType = iota + 1
	EventVehicleStateChanged
	EventBookingAssignmentChanged
	EventUnknownStatus
	EventProviderConnected
	EventProviderDisconnected
	EventMessagingConnected
	EventMessagingDisconnected
)

// --- Event payloads ---

type PollCompletedEvent struct {
	Sequence uint64
	Vehicles int
	Bookings int
}

type VehicleStateChangedEvent struct {
	Callsign  string
	FromState string
	ToState   string
	Color     string
	Reason    string
}

type BookingAssignmentChangedEvent struct {
	BookingID string
	Callsign  *string
	Tier      string
	Assigned  bool
}

type UnknownStatusEvent struct {
	Callsign  string
	RawStatus string
}

type ConnectionEvent struct {
	Detail string
}
