// Package output renders command results for noteguard-cli.
//
// Results are printed as an aligned table (default), JSON or YAML. Tables
// are derived from struct fields; a `table:"NAME,wide"` tag renames a column
// and hides it unless --wide is set, `table:"-"` drops it.
//
// Spinner and ProgressBar draw on stderr while requests are in flight.
package output
