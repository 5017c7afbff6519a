// Package pipeline runs the single-pass tracker: load the dataset, detect
// changed editions by fingerprint, enrich the latest edition of each series
// with trend analyses, and dispatch notifications.
//
// Rules applied per edition:
//   - An edition is processed when its fingerprint changed, in test mode, or on
//     the initial run (no prior state).
//   - Only the edition with the series' maximum year is analyzed and notified;
//     older editions only update state.
//   - The initial run seeds state and knowledge base without notifying.
//   - A failed year analysis is logged and skipped; other years and editions
//     continue.
//
// State and knowledge base are checkpointed with atomic writes after every
// latest-edition pass and once more at the end. A run with no changes writes
// nothing. A file lock in the data directory keeps runs from overlapping.
//
// Stored analyses are never recomputed by a run. Controller.Recompute replaces
// a single venue year on request.
package pipeline
