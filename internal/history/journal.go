// Package history keeps a local journal of scan results as this kiosk saw
// them. The backend remains the system of record.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/neekaru/washgate/internal/access"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Scan sources.
const (
	SourceCamera   = "camera"
	SourceFile     = "file"
	SourceSimulate = "simulate"
)

// Entry is one journaled scan.
type Entry struct {
	ID         string    `json:"id"`
	ScannedAt  time.Time `json:"scanned_at"`
	LocationID string    `json:"location_id,omitempty"`
	CameraID   string    `json:"camera_id,omitempty"`
	Source     string    `json:"source"`
	Allowed    bool      `json:"allowed"`
	MemberID   int       `json:"member_id,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Plan       string    `json:"plan,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RawQR      string    `json:"raw_qr,omitempty"`
}

// FromOutcome builds an entry for a verified outcome.
func FromOutcome(o access.Outcome, source, cameraID string) Entry {
	return Entry{
		ScannedAt:  o.At,
		LocationID: o.LocationID,
		CameraID:   cameraID,
		Source:     source,
		Allowed:    o.Allowed,
		MemberID:   o.MemberID,
		Subject:    o.Subject,
		Plan:       o.Plan,
		Reason:     o.Reason,
		RawQR:      o.Payload,
	}
}

// Journal stores entries in SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database in dataDir and migrates it.
func Open(ctx context.Context, dataDir string) (*Journal, error) {
	path := filepath.Join(dataDir, "scans.db")
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate(ctx context.Context) error {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].Name() < entries[b].Name() })

	for _, entry := range entries {
		raw, err := migrationFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := j.db.ExecContext(ctx, string(raw)); err != nil {
			return fmt.Errorf("exec migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores e, assigning an id and timestamp when missing.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ScannedAt.IsZero() {
		e.ScannedAt = time.Now()
	}
	result := "denied"
	if e.Allowed {
		result = "allowed"
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO scan_events (id, scanned_at, location_id, camera_id, source, result, member_id, subject, plan, reason, raw_qr)
		VALUES (?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, NULLIF(?, 0), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''))
	`, e.ID, e.ScannedAt.UnixMilli(), e.LocationID, e.CameraID, e.Source, result,
		e.MemberID, e.Subject, e.Plan, e.Reason, e.RawQR)
	if err != nil {
		return Entry{}, fmt.Errorf("insert scan event: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, scanned_at, COALESCE(location_id, ''), COALESCE(camera_id, ''), source, result,
			COALESCE(member_id, 0), COALESCE(subject, ''), COALESCE(plan, ''), COALESCE(reason, ''), COALESCE(raw_qr, '')
		FROM scan_events
		ORDER BY scanned_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan events: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e      Entry
			millis int64
			result string
		)
		if err := rows.Scan(&e.ID, &millis, &e.LocationID, &e.CameraID, &e.Source, &result,
			&e.MemberID, &e.Subject, &e.Plan, &e.Reason, &e.RawQR); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.ScannedAt = time.UnixMilli(millis)
		e.Allowed = result == "allowed"
		out = append(out, e)
	}
	return out, rows.Err()
}
