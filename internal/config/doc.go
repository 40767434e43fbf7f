// Package config loads and validates daemon configuration from YAML.
//
// Files may reference environment variables with ${VAR} syntax; they are
// expanded before parsing. Missing optional fields receive defaults via
// applyDefaults; Validate rejects configs that cannot run.
package config
