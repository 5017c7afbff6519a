// Package knowledge persists per-venue, per-year trend analyses.
//
// The knowledge base is a cache with no expiry: an entry is computed at most
// once and never overwritten. Ensure wraps that rule for callers, and Forget
// exists for operators who need to force a recomputation. The file is rewritten
// whole, pretty-printed, via temp file and rename.
package knowledge
