// Package config defines the noteguard-cli configuration (~/.noteguard/cli.yaml).
//
// Values are layered by confloader: defaults, the YAML file, an optional
// .env file next to it, NOTEGUARD_* variables, then command-line flags.
package config
