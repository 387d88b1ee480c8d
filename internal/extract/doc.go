// Package extract locates each datum a stage needs, starting from the
// stage's raw output bag and falling back to known secondary artifact files
// under the campaign directory.
//
// Probing order is an explicit, ordered list of named sources per field,
// combined left to right; the first source returning a structurally valid
// value wins and is recorded for audit. A malformed candidate file counts as
// absent and probing continues. A mandatory field with no source fails fast;
// a non-mandatory field takes its documented fallback, logged.
package extract
