package telemetry

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store archives telemetry sessions in a sqlite database.
type Store struct {
	*sql.DB
}

// Session describes one recorded run.
type Session struct {
	ID      string
	Started time.Time
	Source  string
	Records int
}

// OpenStore opens (or creates) the database at path and applies the schema.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply telemetry schema: %w", err)
	}
	return &Store{db}, nil
}

// StartSession creates a session and returns its id.
func (s *Store) StartSession(source string) (string, error) {
	id := uuid.NewString()
	_, err := s.Exec(
		`INSERT INTO telemetry_sessions (session_id, started_unix_nanos, source) VALUES (?, ?, ?)`,
		id, time.Now().UnixNano(), source,
	)
	if err != nil {
		return "", fmt.Errorf("failed to start telemetry session: %w", err)
	}
	return id, nil
}

// Append stores one record at position seq of a session.
func (s *Store) Append(session string, seq int, r Record) error {
	query := `
		INSERT INTO telemetry_records (
			session_id, seq, x, y, path_dis, upcoming_angle, free_track_speed, break_reduction,
			throttle, velocity, steer, target_velocity, max_angle, breakmultiplier
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.Exec(query, session, seq, r.X, r.Y, r.PathDis, r.UpcomingAngle, r.FreeTrackSpeed,
		r.BreakReduction, r.Throttle, r.Velocity, r.Steer, r.TargetVelocity, r.MaxAngle, r.BreakMultiplier)
	if err != nil {
		return fmt.Errorf("failed to insert telemetry record: %w", err)
	}
	return nil
}

// Records returns every record of a session in sequence order.
func (s *Store) Records(session string) ([]Record, error) {
	rows, err := s.Query(`
		SELECT x, y, path_dis, upcoming_angle, free_track_speed, break_reduction,
			throttle, velocity, steer, target_velocity, max_angle, breakmultiplier
		FROM telemetry_records WHERE session_id = ? ORDER BY seq`, session)
	if err != nil {
		return nil, fmt.Errorf("failed to query telemetry records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.X, &r.Y, &r.PathDis, &r.UpcomingAngle, &r.FreeTrackSpeed, &r.BreakReduction,
			&r.Throttle, &r.Velocity, &r.Steer, &r.TargetVelocity, &r.MaxAngle, &r.BreakMultiplier); err != nil {
			return nil, fmt.Errorf("failed to scan telemetry record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sessions lists every session, newest first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.Query(`
		SELECT s.session_id, s.started_unix_nanos, s.source, COUNT(r.seq)
		FROM telemetry_sessions s
		LEFT JOIN telemetry_records r ON r.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.started_unix_nanos DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query telemetry sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess    Session
			started int64
		)
		if err := rows.Scan(&sess.ID, &started, &sess.Source, &sess.Records); err != nil {
			return nil, fmt.Errorf("failed to scan telemetry session: %w", err)
		}
		sess.Started = time.Unix(0, started)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// StoreSink appends every emitted record to one session. Write errors are counted and
// otherwise ignored.
type StoreSink struct {
	store   *Store
	session string
	seq     int
	failed  int
}

// NewStoreSink starts a session in store and returns a sink writing to it.
func NewStoreSink(store *Store, source string) (*StoreSink, error) {
	id, err := store.StartSession(source)
	if err != nil {
		return nil, err
	}
	return &StoreSink{store: store, session: id}, nil
}

// Session returns the session id records are written to.
func (s *StoreSink) Session() string { return s.session }

// Failed returns how many records could not be stored.
func (s *StoreSink) Failed() int { return s.failed }

// Emit implements Sink.
func (s *StoreSink) Emit(r Record) {
	if err := s.store.Append(s.session, s.seq, r); err != nil {
		s.failed++
		return
	}
	s.seq++
}
