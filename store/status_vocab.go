package store

import (
	"time"
)

// StatusToken is a raw provider status string observed during polling,
// tracked so operators can see when the upstream vocabulary drifts.
type StatusToken struct {
	ID          int64     `json:"id"`
	Token       string    `json:"token"`
	Family      string    `json:"family"`
	Occurrences int64     `json:"occurrences"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// RecordStatusToken upserts an observed raw status, bumping its
// occurrence count. New tokens start in the "unknown" family until an
// operator classifies them.
func (db *DB) RecordStatusToken(token, family string) error {
	if db.driver == "postgres" {
		_, err := db.Exec(Rebind(`INSERT INTO status_vocab (token, family, occurrences) VALUES (?, ?, 1)
			ON CONFLICT (token) DO UPDATE SET occurrences = status_vocab.occurrences + 1, last_seen = NOW()`),
			token, family)
		return err
	}
	_, err := db.Exec(`INSERT INTO status_vocab (token, family, occurrences) VALUES (?, ?, 1)
		ON CONFLICT (token) DO UPDATE SET occurrences = occurrences + 1, last_seen = datetime('now','localtime')`,
		token, family)
	return err
}

func (db *DB) SetStatusTokenFamily(token, family string) error {
	_, err := db.Exec(db.Q(`UPDATE status_vocab SET family=? WHERE token=?`), family, token)
	return err
}

func (db *DB) ListStatusVocab() ([]*StatusToken, error) {
	rows, err := db.Query(`SELECT id, token, family, occurrences, first_seen, last_seen FROM status_vocab ORDER BY token`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tokens []*StatusToken
	for rows.Next() {
		var s StatusToken
		var firstSeen, lastSeen any
		if err := rows.Scan(&s.ID, &s.Token, &s.Family, &s.Occurrences, &firstSeen, &lastSeen); err != nil {
			return nil, err
		}
		s.FirstSeen = parseTime(firstSeen)
		s.LastSeen = parseTime(lastSeen)
		tokens = append(tokens, &s)
	}
	return tokens, rows.Err()
}

func (db *DB) ListUnknownStatusTokens() ([]*StatusToken, error) {
	rows, err := db.Query(db.Q(`SELECT id, token, family, occurrences, first_seen, last_seen FROM status_vocab WHERE family=? ORDER BY occurrences DESC`), "unknown")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tokens []*StatusToken
	for rows.Next() {
		var s StatusToken
		var firstSeen, lastSeen any
		if err := rows.Scan(&s.ID, &s.Token, &s.Family, &s.Occurrences, &firstSeen, &lastSeen); err != nil {
			return nil, err
		}
		s.FirstSeen = parseTime(firstSeen)
		s.LastSeen = parseTime(lastSeen)
		tokens = append(tokens, &s)
	}
	return tokens, rows.Err()
}
