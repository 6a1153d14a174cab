// Package config provides environment-driven configuration for the database
// connections and the redis cache, with sensible local-development defaults.
package config
