// Package dblp fetches paper titles and links for a venue and year from the
// dblp publication search API.
//
// Requests are single-shot with a bounded timeout. FetchPapers never fails:
// errors degrade to an empty list, and every call is followed by a fixed pacing
// delay so the upstream usage policy is respected.
package dblp
