// Package config holds corpusfind's runtime configuration.
//
// Configuration is populated from CLI flags (and optionally a YAML profile
// file) and passed through the application by value rather than global
// state. Validation happens once, before any network activity: an invalid
// walk parameter fails fast with a ConfigError and is never retried.
package config
