// Package schedule holds the pure domain model of the engine: task
// definitions, recurrence rules, completion policies, and the calendar
// arithmetic that expands a schedule into dated occurrences.
//
// Nothing in this package performs I/O or holds state. Occurrences are
// derived values: they are recomputed from the rule on every query and
// are never persisted.
package schedule
