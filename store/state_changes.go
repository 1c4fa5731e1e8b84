package store

import (
	"time"
)

// StateChange records a vehicle state transition observed between two
// polling passes.
type StateChange struct {
	ID        int64     `json:"id"`
	Callsign  string    `json:"callsign"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (db *DB) RecordStateChange(callsign, fromState, toState, reason string) error {
	_, err := db.Exec(db.Q(`INSERT INTO state_changes (callsign, from_state, to_state, reason) VALUES (?, ?, ?, ?)`),
		callsign, fromState, toState, reason)
	return err
}

func (db *DB) ListStateChanges(limit int) ([]*StateChange, error) {
	rows, err := db.Query(db.Q(`SELECT id, callsign, from_state, to_state, reason, created_at FROM state_changes ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var changes []*StateChange
	for rows.Next() {
		var c StateChange
		var createdAt any
		if err := rows.Scan(&c.ID, &c.Callsign, &c.FromState, &c.ToState, &c.Reason, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAt)
		changes = append(changes, &c)
	}
	return changes, rows.Err()
}

func (db *DB) ListVehicleStateChanges(callsign string, limit int) ([]*StateChange, error) {
	rows, err := db.Query(db.Q(`SELECT id, callsign, from_state, to_state, reason, created_at FROM state_changes WHERE callsign=? ORDER BY id DESC LIMIT ?`), callsign, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var changes []*StateChange
	for rows.Next() {
		var c StateChange
		var createdAt any
		if err := rows.Scan(&c.ID, &c.Callsign, &c.FromState, &c.ToState, &c.Reason, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAt)
		changes = append(changes, &c)
	}
	return changes, rows.Err()
}
