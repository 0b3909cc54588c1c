package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/harun/chronicle/pkg/session"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// SQLiteExporter snapshots the catalog into a SQLite database with one row
// per session and one row per message.
type SQLiteExporter struct{}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		working_dir TEXT NOT NULL,
		message_count INTEGER NOT NULL,
		accumulated_total_tokens INTEGER,
		is_title_customized INTEGER NOT NULL,
		metadata TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created INTEGER NOT NULL,
		PRIMARY KEY (session_id, seq),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);
`

// Export writes all records into the database at dest, replacing any prior
// snapshot of the same sessions.
func (e *SQLiteExporter) Export(ctx context.Context, records []session.SessionRecord, dest string) error {
	db, err := sql.Open("sqlite3", dest)
	if err != nil {
		return fmt.Errorf("failed to open export database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create export schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin export transaction: %w", err)
	}
	defer tx.Rollback()

	for _, record := range records {
		metaJSON, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %q: %w", record.ID, err)
		}

		var accumulated interface{}
		if record.Metadata.AccumulatedTotalTokens != nil {
			accumulated = *record.Metadata.AccumulatedTotalTokens
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO sessions
				(id, description, working_dir, message_count, accumulated_total_tokens, is_title_customized, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.ID,
			record.Metadata.Description,
			record.Metadata.WorkingDir,
			record.Metadata.MessageCount,
			accumulated,
			record.Metadata.IsTitleCustomized,
			string(metaJSON),
		); err != nil {
			return fmt.Errorf("failed to insert session %q: %w", record.ID, err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", record.ID); err != nil {
			return fmt.Errorf("failed to clear messages for %q: %w", record.ID, err)
		}

		for seq, msg := range record.Messages {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO messages (session_id, seq, role, content, created)
				VALUES (?, ?, ?, ?, ?)`,
				record.ID, seq, msg.Role, msg.Content, msg.Created,
			); err != nil {
				return fmt.Errorf("failed to insert message %d of %q: %w", seq, record.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}

	log.Info().Int("sessions", len(records)).Str("dest", dest).Msg("Catalog exported to sqlite")

	return nil
}

// Extension returns the file extension for this format.
func (e *SQLiteExporter) Extension() string {
	return "db"
}
