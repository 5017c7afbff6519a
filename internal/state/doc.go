// Package state persists the last-seen fingerprint of every conference edition
// so each run only reprocesses editions whose year or first deadline changed.
package state
