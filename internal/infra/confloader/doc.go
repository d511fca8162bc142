// Package confloader loads layered configuration with koanf.
//
// Sources, lowest to highest priority:
//
//  1. Default values (LoadMap before Load)
//  2. YAML configuration file
//  3. Optional .env file (applied to the process environment)
//  4. NOTEGUARD_* environment variables
//  5. Command-line flags (LoadMap after Load)
//
// Environment names map onto keys that already exist, so
// NOTEGUARD_TOKEN_STORE_BACKEND sets token_store.backend. Unknown names
// use a double underscore as the level separator.
package confloader
