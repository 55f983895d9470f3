package runs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/wealthsim/internal/database"
)

// Repository handles database operations for completed simulation runs.
// Database: runs.db (simulation_runs table)
//
// The timeline and summary are stored as JSON blobs; scalar columns mirror
// the fields needed for listing so list queries never decode blobs.
type Repository struct {
	db  *database.DB // runs.db
	log zerolog.Logger
}

// NewRepository creates a new runs repository.
// db parameter should be runs.db connection
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "runs_repository").Logger(),
	}
}

// ListItem is the blob-free projection used for run listings.
type ListItem struct {
	ID             string    `json:"id"`
	Seed           string    `json:"seed"`
	Periods        int       `json:"periods"`
	StartingWealth float64   `json:"starting_wealth"`
	EndingWealth   float64   `json:"ending_wealth"`
	CAGR           float64   `json:"cagr"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	Persona        string    `json:"persona"`
	CreatedAt      time.Time `json:"created_at"`
}

// Save persists a completed run record.
func (r *Repository) Save(rec *Record) error {
	timelineJSON, err := json.Marshal(rec.Run.Timeline)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline for run %s: %w", rec.Run.ID, err)
	}
	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary for run %s: %w", rec.Run.ID, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO simulation_runs (
			id, user_id, seed, periods, starting_wealth, ending_wealth,
			cagr, max_drawdown, persona, timeline_json, summary_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Run.ID, rec.UserID, rec.Run.Seed, rec.Run.Periods,
		rec.Run.StartingWealth, rec.Run.EndingWealth,
		rec.Run.CAGR, rec.Summary.MaxDrawdown, rec.Summary.Persona,
		string(timelineJSON), string(summaryJSON),
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.Run.ID, err)
	}

	r.log.Debug().
		Str("run_id", rec.Run.ID).
		Str("user_id", rec.UserID).
		Float64("ending_wealth", rec.Run.EndingWealth).
		Msg("Saved simulation run")

	return nil
}

// Get retrieves a full run record by ID. Returns (nil, nil) when not found.
func (r *Repository) Get(id string) (*Record, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, seed, periods, starting_wealth, ending_wealth, cagr,
		       timeline_json, summary_json, created_at
		FROM simulation_runs
		WHERE id = ?
	`, id)

	var rec Record
	var timelineJSON, summaryJSON, createdAt string

	err := row.Scan(
		&rec.Run.ID, &rec.UserID, &rec.Run.Seed, &rec.Run.Periods,
		&rec.Run.StartingWealth, &rec.Run.EndingWealth, &rec.Run.CAGR,
		&timelineJSON, &summaryJSON, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(timelineJSON), &rec.Run.Timeline); err != nil {
		return nil, fmt.Errorf("failed to decode timeline for run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &rec.Summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary for run %s: %w", id, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}

	return &rec, nil
}

// ListByUser returns the most recent runs for a user, newest first.
func (r *Repository) ListByUser(userID string, limit int) ([]ListItem, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, seed, periods, starting_wealth, ending_wealth, cagr,
		       max_drawdown, persona, created_at
		FROM simulation_runs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs for %s: %w", userID, err)
	}
	defer rows.Close()

	var items []ListItem
	for rows.Next() {
		var item ListItem
		var createdAt string
		if err := rows.Scan(
			&item.ID, &item.Seed, &item.Periods, &item.StartingWealth,
			&item.EndingWealth, &item.CAGR, &item.MaxDrawdown, &item.Persona, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			item.CreatedAt = t
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}

	return items, nil
}

// Snapshot is a pre-encoded run row. The day-trading game stores its sync
// snapshots through this path because its timeline shape differs from the
// year-by-year simulation.
type Snapshot struct {
	ID             string
	UserID         string
	Seed           string
	Periods        int
	StartingWealth float64
	EndingWealth   float64
	CAGR           float64
	MaxDrawdown    float64
	Persona        string
	TimelineJSON   json.RawMessage
	SummaryJSON    json.RawMessage
	CreatedAt      time.Time
}

// SaveSnapshot persists a pre-encoded run row.
func (r *Repository) SaveSnapshot(snap *Snapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO simulation_runs (
			id, user_id, seed, periods, starting_wealth, ending_wealth,
			cagr, max_drawdown, persona, timeline_json, summary_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snap.ID, snap.UserID, snap.Seed, snap.Periods,
		snap.StartingWealth, snap.EndingWealth,
		snap.CAGR, snap.MaxDrawdown, snap.Persona,
		string(snap.TimelineJSON), string(snap.SummaryJSON),
		snap.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Count returns the total number of stored runs.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM simulation_runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}
