// Package finding defines the core data model for control evaluation:
// the Finding value type, its Severity classification, and the classifier
// that normalizes raw scanner records into Findings.
//
// Findings are immutable value objects. They are created once per
// evaluation input and never mutated afterwards; downstream stages only
// filter them out of consideration.
package finding
