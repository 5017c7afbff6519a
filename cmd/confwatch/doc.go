// Command confwatch tracks conference deadline changes from a local dataset
// checkout, enriches each updated conference with a paper trend analysis of
// its recent years, and delivers the result to the configured notification
// channels.
//
// Subcommands:
//
//	run          one tracking pass over the dataset (or a single --test file)
//	kb           inspect the knowledge base and force-recompute a venue year
//	state        list stored edition fingerprints
//	history      recent runs and deliveries from the SQLite ledger
//	test-notify  send a sample notification to every configured channel
//	config       write a sample configuration or validate the active one
package main
