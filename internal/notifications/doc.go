// Package notifications renders conference update messages and delivers them.
//
// Compose produces a markdown body for the PushPlus webhook and a plain-text
// body for email and Telegram. Both list up to three analyzed years with themes
// ordered by share, and both end with the token cost of those analyses.
//
// Service fans a Message out to every channel whose configuration is complete.
// Delivery failures are logged per channel and returned as Delivery records;
// they never abort the caller.
package notifications
