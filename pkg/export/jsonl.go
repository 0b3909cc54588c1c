package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/harun/chronicle/pkg/session"
	"github.com/rs/zerolog/log"
)

// JSONLExporter writes one full session record per line.
type JSONLExporter struct{}

// Export writes all records to dest as JSON lines.
func (e *JSONLExporter) Export(ctx context.Context, records []session.SessionRecord, dest string) error {
	file, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to encode session %q: %w", record.ID, err)
		}
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync export file: %w", err)
	}

	log.Info().Int("sessions", len(records)).Str("dest", dest).Msg("Catalog exported to jsonl")

	return nil
}

// Extension returns the file extension for this format.
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
