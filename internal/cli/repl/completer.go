package repl

import (
	"sort"
	"strings"
)

// Completer suggests commands for partial input.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given command paths. Without
// arguments the noteguard-cli command set is used.
func NewCompleter(commands ...string) *Completer {
	if len(commands) == 0 {
		commands = []string{
			"auth", "auth login", "auth logout", "auth register", "auth whoami",
			"auth verify-email", "auth resend-verification", "auth forgot-password",
			"auth reset-password", "auth profile",
			"analyze",
			"history", "history list", "history get", "history delete", "history search",
			"system", "system health", "system version", "system metrics",
			"config", "config show", "config path",
			"help", "exit", "quit",
		}
	}
	cp := append([]string(nil), commands...)
	sort.Strings(cp)
	return &Completer{commands: cp}
}

// Complete returns the commands starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether name is a top-level command.
func (c *Completer) Known(name string) bool {
	for _, cmd := range c.commands {
		if cmd == name {
			return true
		}
	}
	return false
}

// Suggest returns top-level commands sharing the first letter of name.
func (c *Completer) Suggest(name string) []string {
	if name == "" {
		return nil
	}
	var out []string
	for _, cmd := range c.Complete(name[:1]) {
		if !strings.Contains(cmd, " ") {
			out = append(out, cmd)
		}
	}
	return out
}
