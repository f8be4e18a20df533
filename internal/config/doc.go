// Package config loads, normalizes, and validates dubsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves the Google API credential from
// GOOGLE_API_KEY (or GEMINI_API_KEY) for every service section that leaves
// api_key empty. A missing credential is a configuration error surfaced at
// startup, never mid-pipeline.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
