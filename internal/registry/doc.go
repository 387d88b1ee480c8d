// Package registry declares the bounded toolset each pipeline stage may use.
// Every stage gets its own working tools plus exactly one finalize operation;
// no stage can see or invoke another stage's tools.
package registry
