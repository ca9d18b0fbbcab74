package shell

import (
	"errors"
	"fmt"
)

var (
	ErrArgMap = errors.New("failed to map argument(s)")
)

// MapArgs maps positional arguments to targets, requiring at least minArgs of them.
// Extra args are left for the caller, and extra targets are left untouched.
func MapArgs(args []string, minArgs int, targets ...*string) error {
	if len(args) < minArgs {
		return fmt.Errorf("%w: not enough arguments (%d) to satisfy minArgs (%d)", ErrArgMap, len(args), minArgs)
	}
	if len(targets) < minArgs {
		return fmt.Errorf("%w: not enough targets (%d) to satisfy minArgs (%d)", ErrArgMap, len(targets), minArgs)
	}
	for i := 0; i < len(args) && i < len(targets); i++ {
		if targets[i] == nil {
			return fmt.Errorf("%w: target %d is nil", ErrArgMap, i)
		}
		*targets[i] = args[i]
	}
	return nil
}

// MustGet is used with a [pflag.FlagSet] getter to panic if the flag is not defined, or is not the right type.
// Commands define their own flags, so a failed get is a programming error.
func MustGet[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
