package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/harun/chronicle/internal/observability"
	"github.com/harun/chronicle/internal/tracing"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AppendMessages extends a session's message log. The session is created
// implicitly on first append. All messages are committed with a single write
// on an O_APPEND descriptor, so a crash leaves the log either exactly as
// before or exactly as after, never a torn suffix. The metadata message count
// is bumped after a successful append.
func (s *Store) AppendMessages(ctx context.Context, id string, messages []Message) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithSessionID(ctx, id)
	ctx, span := tracing.StartSpan(
		ctx,
		"chronicle.session",
		"session.append",
		attribute.String("session_id", id),
		attribute.Int("messages", len(messages)),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)
	start := time.Now()
	defer func() {
		observability.RecordSessionSave(time.Since(start))
	}()

	if err := ValidateID(id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for i := range messages {
		if messages[i].Role == "" {
			return fmt.Errorf("message role cannot be empty")
		}
		if messages[i].Created == 0 {
			messages[i].Created = time.Now().Unix()
		}
		data, err := json.Marshal(messages[i])
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	lock := s.getWriteLock(id)
	lock.Lock()
	defer lock.Unlock()

	file, err := os.OpenFile(s.logPath(id), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to open session log: %w: %v", ErrStorage, err)
	}
	defer file.Close()

	// Single write keeps the append an all-or-nothing boundary.
	if _, err := file.Write(buf.Bytes()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to write session log: %w: %v", ErrStorage, err)
	}

	if err := file.Sync(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to sync session log: %w: %v", ErrStorage, err)
	}

	if err := s.updateMetadataLocked(id, func(meta *SessionMetadata) {
		meta.MessageCount += len(messages)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.updateActiveSessionsMetric()
	logger.Debug().Int("messages", len(messages)).Msg("Messages appended")

	return nil
}

// ReadMessages returns a session's full message log in append order. It
// fails with ErrNotFound when no log exists and ErrCorruptData when any
// stored line cannot be parsed; tolerance for corrupt records lives in the
// catalog and aggregation layers, not here.
func (s *Store) ReadMessages(ctx context.Context, id string) ([]Message, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = tracing.WithSessionID(ctx, id)
	ctx, span := tracing.StartSpan(
		ctx,
		"chronicle.session",
		"session.read_messages",
		attribute.String("session_id", id),
	)
	defer span.End()
	logger := tracing.LoggerFromContext(ctx, log.Logger)
	start := time.Now()
	defer func() {
		observability.RecordSessionLoad(time.Since(start))
	}()

	if err := ValidateID(id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	file, err := os.Open(s.logPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session log %q: %w", id, ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to open session log: %w: %v", ErrStorage, err)
	}
	defer file.Close()

	var messages []Message
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			observability.RecordCorruptRecord()
			return nil, fmt.Errorf("session log %q line %d: %w: %v", id, lineNum, ErrCorruptData, err)
		}
		if msg.Role == "" {
			observability.RecordCorruptRecord()
			return nil, fmt.Errorf("session log %q line %d: %w: missing role", id, lineNum, ErrCorruptData)
		}

		messages = append(messages, msg)
	}

	if err := scanner.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read session log: %w: %v", ErrStorage, err)
	}

	logger.Debug().Int("messages", len(messages)).Msg("Session log loaded")

	return messages, nil
}
