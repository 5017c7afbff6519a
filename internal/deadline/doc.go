// Package deadline normalizes conference deadlines.
//
// Deadlines in the dataset are local wall-clock strings paired with a timezone
// label such as "AoE" or "UTC-7". The package resolves those labels to whole-hour
// offsets, converts deadlines into the fixed UTC+8 display zone, and picks the
// timeline entry that is still open. Every function is total: bad input degrades
// to a marker value and never returns an error to the pipeline.
package deadline
