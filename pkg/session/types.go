package session

import "time"

// ModifiedTimeLayout is the format of SessionInfo.Modified. The insights
// aggregators parse it back with the same layout.
const ModifiedTimeLayout = "2006-01-02 15:04:05 UTC"

// Message represents a single conversation turn in a session log.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Created int64  `json:"created"` // epoch seconds
}

// SessionMetadata is the per-session metadata record. Token fields are
// pointers so an absent count stays distinguishable from an explicit zero.
type SessionMetadata struct {
	Description             string  `json:"description"`
	MessageCount            int     `json:"message_count"`
	TotalTokens             *int64  `json:"total_tokens"`
	InputTokens             *int64  `json:"input_tokens"`
	OutputTokens            *int64  `json:"output_tokens"`
	AccumulatedTotalTokens  *int64  `json:"accumulated_total_tokens"`
	AccumulatedInputTokens  *int64  `json:"accumulated_input_tokens"`
	AccumulatedOutputTokens *int64  `json:"accumulated_output_tokens"`
	WorkingDir              string  `json:"working_dir"`
	ScheduleID              *string `json:"schedule_id,omitempty"`
	ProjectID               *string `json:"project_id,omitempty"`
	IsTitleCustomized       bool    `json:"is_title_customized"`
}

// SessionInfo describes one catalog entry.
type SessionInfo struct {
	ID       string          `json:"id"`
	Modified string          `json:"modified"`
	Metadata SessionMetadata `json:"metadata"`
}

// SessionRecord is a session's metadata and full message log, owned as a
// unit per session id.
type SessionRecord struct {
	ID       string          `json:"id"`
	Metadata SessionMetadata `json:"metadata"`
	Messages []Message       `json:"messages"`
}

// SortOrder controls catalog listing order by modification time.
type SortOrder int

const (
	SortDescending SortOrder = iota
	SortAscending
)

func formatModified(t time.Time) string {
	return t.UTC().Format(ModifiedTimeLayout)
}
