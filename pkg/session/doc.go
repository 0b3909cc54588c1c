// Package session persists per-session metadata and message logs under a
// catalog root directory.
//
// Invariants:
// - Session ids are validated and path-safe; id to location mapping is injective.
// - Writes for the same session are serialized; distinct sessions never contend.
// - Metadata updates commit via temp-file-and-rename, so readers never see a blend.
// - A missing metadata record reads as the zero-value default, never an error.
//
// Usage:
//
//	store, _ := session.Open("/tmp/chronicle/sessions")
//	_ = store.AppendMessages(ctx, "session-1", []session.Message{{Role: "user", Content: "hello"}})
//	record, _ := store.ReadRecord(ctx, "session-1")
//	_ = record
package session
