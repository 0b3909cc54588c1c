package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/harun/chronicle/internal/observability"
	"github.com/harun/chronicle/internal/tracing"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ReadMetadata returns a session's metadata record. A missing record yields
// the zero-value default, never an error; a record that exists but cannot be
// parsed or fails schema validation yields ErrCorruptData.
func (s *Store) ReadMetadata(ctx context.Context, id string) (SessionMetadata, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := tracing.StartSpan(
		ctx,
		"chronicle.session",
		"session.read_metadata",
		attribute.String("session_id", id),
	)
	defer span.End()

	if err := ValidateID(id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SessionMetadata{}, err
	}

	return s.readMetadataFile(id)
}

func (s *Store) readMetadataFile(id string) (SessionMetadata, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return SessionMetadata{}, nil
		}
		return SessionMetadata{}, fmt.Errorf("failed to read session metadata: %w: %v", ErrStorage, err)
	}

	if err := validateMetadataSchema(data); err != nil {
		observability.RecordCorruptRecord()
		return SessionMetadata{}, fmt.Errorf("session metadata %q: %w: %v", id, ErrCorruptData, err)
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		observability.RecordCorruptRecord()
		return SessionMetadata{}, fmt.Errorf("session metadata %q: %w: %v", id, ErrCorruptData, err)
	}

	return meta, nil
}

// UpdateMetadata applies mutate to a session's metadata as one indivisible
// read-modify-write. The new record is written to a temporary file and
// committed with an atomic rename, so concurrent readers observe the old
// record or the new one, never a blend. Updates for a nonexistent session
// fail with ErrNotFound; sessions are materialized by AppendMessages only.
func (s *Store) UpdateMetadata(ctx context.Context, id string, mutate func(*SessionMetadata)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithSessionID(ctx, id)
	ctx, span := tracing.StartSpan(
		ctx,
		"chronicle.session",
		"session.update_metadata",
		attribute.String("session_id", id),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)

	if err := ValidateID(id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	exists, err := s.exists(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if !exists {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	lock := s.getWriteLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.updateMetadataLocked(id, mutate); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.Debug().Msg("Session metadata updated")

	return nil
}

// updateMetadataLocked performs the read-modify-write cycle. Callers must
// hold the session's write lock.
func (s *Store) updateMetadataLocked(id string, mutate func(*SessionMetadata)) error {
	meta, err := s.readMetadataFile(id)
	if err != nil {
		return err
	}

	mutate(&meta)

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal session metadata: %w", err)
	}
	data = append(data, '\n')

	metaPath := s.metaPath(id)
	tempPath := metaPath + ".tmp"

	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp metadata file: %w: %v", ErrStorage, err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write session metadata: %w: %v", ErrStorage, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync session metadata: %w: %v", ErrStorage, err)
	}

	file.Close()

	// Atomic swap: the visible file is always fully old or fully new.
	if err := os.Rename(tempPath, metaPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace session metadata: %w: %v", ErrStorage, err)
	}

	return nil
}

// SetDescription replaces a session's description and marks the title as
// customized. An empty replacement is allowed.
func (s *Store) SetDescription(ctx context.Context, id, description string) error {
	return s.UpdateMetadata(ctx, id, func(meta *SessionMetadata) {
		meta.Description = description
		meta.IsTitleCustomized = true
	})
}
