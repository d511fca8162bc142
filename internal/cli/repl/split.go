package repl

import (
	"errors"

	"github.com/kballard/go-shellquote"
)

// ErrUnterminatedQuote is returned by Split for an unbalanced quote or a
// trailing backslash.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Split breaks a line into arguments using POSIX shell quoting rules. A
// blank line yields nil.
func Split(line string) ([]string, error) {
	args, err := shellquote.Split(line)
	switch {
	case errors.Is(err, shellquote.UnterminatedSingleQuoteError),
		errors.Is(err, shellquote.UnterminatedDoubleQuoteError),
		errors.Is(err, shellquote.UnterminatedEscapeError):
		return nil, ErrUnterminatedQuote
	case err != nil:
		return nil, err
	}
	if len(args) == 0 {
		return nil, nil
	}
	return args, nil
}
