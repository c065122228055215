// Package config loads, normalizes, and validates physiobids configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// converter needs: trigger detection thresholds, run probing limits, journal
// and plot toggles, and log routing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
