// Package config loads, normalizes, and validates trimscript configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as OPENAI_API_KEY and
// HF_TOKEN. Always obtain settings through this package so downstream code
// receives sanitized paths and clear validation errors.
package config
