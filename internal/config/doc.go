// Package config defines the operator configuration.
//
// Values are resolved in layers: built-in defaults, then HELLOWORLD_*
// environment variables, then an optional YAML file. Command-line flags of
// the operator binary are applied last by the caller.
package config
