package marketgame

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/wealthsim/internal/database"
)

// storageVersion stamps persisted blobs. Blobs with a different version are
// discarded and the session starts fresh rather than risking a bad decode.
const storageVersion = 2

type storedState struct {
	Version   int   `msgpack:"version"`
	Simulator State `msgpack:"simulator"`
}

// Store persists game sessions as versioned MessagePack blobs.
// Database: marketgame.db (game_sessions table)
type Store struct {
	db  *database.DB // marketgame.db
	log zerolog.Logger
}

// NewStore creates a new game session store.
// db parameter should be marketgame.db connection
func NewStore(db *database.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "marketgame_store").Logger(),
	}
}

// Load returns the user's session, or a fresh one when none exists.
// Undecodable or version-mismatched blobs reset the session; restore is
// defensive, never fatal.
func (s *Store) Load(userID string) (*State, error) {
	var version int
	var blob []byte

	err := s.db.QueryRow(`
		SELECT version, state_blob FROM game_sessions WHERE user_id = ?
	`, userID).Scan(&version, &blob)
	if err == sql.ErrNoRows {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query game session %s: %w", userID, err)
	}

	if version != storageVersion {
		s.log.Info().
			Str("user_id", userID).
			Int("stored_version", version).
			Msg("Discarding game session with stale storage version")
		return NewState(), nil
	}

	var stored storedState
	if err := msgpack.Unmarshal(blob, &stored); err != nil {
		s.log.Warn().Str("user_id", userID).Err(err).Msg("Resetting undecodable game session")
		return NewState(), nil
	}
	if stored.Version != storageVersion {
		return NewState(), nil
	}

	state := stored.Simulator
	state.Normalize()
	return &state, nil
}

// Save upserts the user's session blob.
func (s *Store) Save(userID string, state *State) error {
	blob, err := msgpack.Marshal(storedState{Version: storageVersion, Simulator: *state})
	if err != nil {
		return fmt.Errorf("failed to encode game session %s: %w", userID, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO game_sessions (user_id, version, state_blob, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			version = excluded.version,
			state_blob = excluded.state_blob,
			updated_at = excluded.updated_at
	`, userID, storageVersion, blob, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save game session %s: %w", userID, err)
	}

	return nil
}

// Delete removes the user's session. Missing sessions are a no-op.
func (s *Store) Delete(userID string) error {
	_, err := s.db.Exec(`DELETE FROM game_sessions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete game session %s: %w", userID, err)
	}
	return nil
}
