// Package ingest adapts raw scanner payloads into classified findings.
// One adapter per source format keeps format-specific parsing out of the
// evaluation engine: every adapter produces finding.Record values, runs
// them through the classifier, and returns an evaluate.Input carrying
// the no-data signal when the payload held no occurrence material.
package ingest
