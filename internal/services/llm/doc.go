// Package llm provides an OpenAI-compatible chat client used for paper title
// tagging and theme summarization.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a single user prompt at a given temperature and
// receive the response content with its token usage.
// DecodeJSONArray: pull the bracketed JSON array out of free-form model output.
//
// # Retry Behaviour
//
// Every failure (transport errors, non-2xx responses, undecodable bodies, empty
// content) is retried with a fixed delay, 3 attempts and 2 seconds apart by
// default. Context cancellation aborts retries immediately.
package llm
