// Package config loads, normalizes, and validates confwatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LLM_API_KEY, PUSHPLUS_TOKEN, and the SMTP_* variables. The Config type
// centralizes every knob the tracking pipeline needs so no other package reads
// the process environment.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
