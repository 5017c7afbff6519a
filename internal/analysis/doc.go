// Package analysis turns a venue's papers for one year into a trend summary.
//
// Stage one sends titles in batches to the text-generation collaborator and
// counts every returned tag. Stage two clusters the resulting histogram into
// 5-10 bilingual research themes with approximate shares.
//
// Model output is free text, so both stages decode the bracketed JSON array and
// fall back when it is malformed: stage one salvages quoted substrings, stage
// two degrades to an empty theme list. ParseMode records which path was taken.
//
// Failure containment: a failed stage-one batch is logged and skipped, while a
// failed stage-two call fails only the year being analyzed.
package analysis
