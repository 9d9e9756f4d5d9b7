// Package config provides configuration structures and utilities for linkex.
// It defines the options for acquiring input, extracting and canonicalizing
// links, and recording runs, plus the YAML configuration file format.
package config
