// Package index keeps a SQLite registry of known campaigns so status and
// listing queries do not scan the campaigns tree. The index also records the
// sequencer's run state, including failures, which campaign metadata does not
// carry.
package index
