package session

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/harun/chronicle/internal/observability"
	"github.com/harun/chronicle/internal/tracing"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// sessionIDs enumerates every session id under the catalog root.
func (s *Store) sessionIDs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read catalog root: %w: %v", ErrStorage, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, logSuffix) {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, logSuffix))
	}

	return ids, nil
}

// modifiedTime returns a session's modification time: the newer of its log
// and metadata file mtimes, so title updates bump recency.
func (s *Store) modifiedTime(id string) (time.Time, error) {
	info, err := os.Stat(s.logPath(id))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat session log: %w: %v", ErrStorage, err)
	}
	modified := info.ModTime()

	if metaInfo, err := os.Stat(s.metaPath(id)); err == nil {
		if metaInfo.ModTime().After(modified) {
			modified = metaInfo.ModTime()
		}
	}

	return modified, nil
}

// List enumerates every session in the catalog sorted by modification time
// per order, ties broken by id ascending. A session whose record is corrupt
// or unreadable is skipped with a diagnostic rather than failing the call;
// only a root-level enumeration failure propagates.
func (s *Store) List(ctx context.Context, order SortOrder) ([]SessionInfo, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(
		ctx,
		"chronicle.session",
		"session.list",
		attribute.Int("sort_order", int(order)),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)
	start := time.Now()
	defer func() {
		observability.RecordCatalogList(time.Since(start))
	}()

	ids, err := s.sessionIDs()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	type entry struct {
		info     SessionInfo
		modified time.Time
	}

	entries := make([]entry, 0, len(ids))
	for _, id := range ids {
		modified, err := s.modifiedTime(id)
		if err != nil {
			logger.Warn().Str("session_id", id).Err(err).Msg("Skipping unreadable session")
			observability.RecordCorruptRecord()
			continue
		}

		meta, err := s.readMetadataFile(id)
		if err != nil {
			logger.Warn().Str("session_id", id).Err(err).Msg("Skipping session with corrupt metadata")
			continue
		}

		entries = append(entries, entry{
			info: SessionInfo{
				ID:       id,
				Modified: formatModified(modified),
				Metadata: meta,
			},
			modified: modified,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].modified.Equal(entries[j].modified) {
			return entries[i].info.ID < entries[j].info.ID
		}
		if order == SortAscending {
			return entries[i].modified.Before(entries[j].modified)
		}
		return entries[i].modified.After(entries[j].modified)
	})

	infos := make([]SessionInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e.info)
	}

	observability.SetActiveSessions(len(infos))
	logger.Debug().Int("sessions", len(infos)).Msg("Catalog listed")

	return infos, nil
}

// ReadRecord returns a session's metadata and full message log as a unit.
func (s *Store) ReadRecord(ctx context.Context, id string) (SessionRecord, error) {
	if err := ValidateID(id); err != nil {
		return SessionRecord{}, err
	}

	messages, err := s.ReadMessages(ctx, id)
	if err != nil {
		return SessionRecord{}, err
	}

	meta, err := s.ReadMetadata(ctx, id)
	if err != nil {
		return SessionRecord{}, err
	}

	return SessionRecord{
		ID:       id,
		Metadata: meta,
		Messages: messages,
	}, nil
}
