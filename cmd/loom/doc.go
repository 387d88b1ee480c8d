// Command loom manages email campaign production pipelines: it initializes
// campaign directories, records stage completions as validated handoff
// envelopes, and reports pipeline progress.
package main
