// Package config loads and validates service configuration from an optional
// YAML file with environment overrides.
package config
