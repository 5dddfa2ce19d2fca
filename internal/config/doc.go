// Package config loads expectrd configuration from environment variables,
// with defaults suitable for local development.
package config
