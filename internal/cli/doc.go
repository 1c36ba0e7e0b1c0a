// Package cli is the interactive front end: a small REPL that logs into the
// portal, triggers syncs, edits the schedule, previews and confirms manual
// imports and lists what the planner holds.
package cli
