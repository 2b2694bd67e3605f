// Package config provides configuration loading, merging, and validation
// facilities for the login portal.
//
// Configuration is assembled from multiple sources and merged with mergo,
// which only fills fields that are still zero, so earlier sources win:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry point is [GetStructuredConfig].
package config
