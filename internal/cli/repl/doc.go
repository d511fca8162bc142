// Package repl implements the interactive mode of noteguard-cli.
//
// The session is restored once before the first prompt. While the loop
// runs, the token storage is watched so that a login or logout made by
// another process is picked up, and the prompt shows who is signed in.
package repl
