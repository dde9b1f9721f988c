// Package history folds daily per-area snapshots into the running history
// series.
//
// A merge drops any rows already dated today from the current series, adds
// carried-forward seed rows taken from an older series, appends today's
// batch and keeps the last row per (Area, Date). Re-running a merge for
// the same day is idempotent.
//
// Inputs that are not already in the canonical Area / DataAggiornamento /
// Valore layout are normalized first by matching column names against a
// fixed candidate list. A plain history that reaches the row ceiling is
// rolled over: it is discarded and the new series starts from today's
// batch, with a warning and a backup of the discarded table.
package history
