// Package config loads, normalizes, and validates tempocheck configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// TOLERANCE_PCT. The Config type centralizes every knob the harness needs,
// allowing the detector binary, build command, and reference list to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
