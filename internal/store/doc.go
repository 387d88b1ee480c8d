// Package store persists campaign state on the filesystem: the campaign
// subtree, the metadata document, and the handoff envelopes. All JSON writes
// are atomic (temp file plus rename), and metadata read-modify-write cycles
// are serialized through an exclusive file lock so concurrent finalize calls
// never interleave updates.
package store
