// Package export snapshots the session catalog into external formats for
// ad-hoc querying and archival. Exports copy records; they never remove
// anything from the catalog.
package export

import (
	"context"
	"fmt"

	"github.com/harun/chronicle/pkg/session"
	"github.com/rs/zerolog/log"
)

// Exporter writes a snapshot of catalog records to a destination path.
type Exporter interface {
	Export(ctx context.Context, records []session.SessionRecord, dest string) error
	Extension() string
}

// NewExporter creates an exporter for the given format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "sqlite", "db":
		return &SQLiteExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: sqlite, jsonl)", format)
	}
}

// Snapshot reads every listable session into full records. Records that fail
// to read are skipped with a diagnostic, mirroring catalog fault tolerance.
func Snapshot(ctx context.Context, store *session.Store) ([]session.SessionRecord, error) {
	infos, err := store.List(ctx, session.SortDescending)
	if err != nil {
		return nil, err
	}

	records := make([]session.SessionRecord, 0, len(infos))
	for _, info := range infos {
		record, err := store.ReadRecord(ctx, info.ID)
		if err != nil {
			log.Warn().Str("session_id", info.ID).Err(err).Msg("Skipping unreadable session in export")
			continue
		}
		records = append(records, record)
	}

	return records, nil
}
