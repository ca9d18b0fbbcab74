package shell

import (
	"bufio"
	"context"
	"errors"
	"github.com/kballard/go-shellquote"
	"golang.org/x/term"
	"io"
	"os"
	"slices"
	"strings"
)

const (
	Prompt        = "evchan> "
	commentMarker = "#"
)

var (
	QuitCommands = []string{"quit", "exit", "x"} // QuitCommands end [Shell.Run] without error.
)

// IsInteractive reports whether f is a terminal, in which case [Shell.Run] should be given a prompt.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Run reads commands from in, one per line, until in is exhausted, a quit command is read, or ctx is done.
//
// Lines are split like a POSIX shell would, so params may be quoted.
// Blank lines and lines starting with "#" are skipped.
// A failing command is reported and the loop keeps going, only read errors are returned.
// If prompt is not empty, it's printed before each line is read.
func (s *Shell) Run(ctx context.Context, in io.Reader, prompt string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()
	p := s.printer
	for {
		if len(prompt) > 0 {
			p.Print(prompt)
		}
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-readErr:
				return err
			default:
				return nil
			}
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 || strings.HasPrefix(line, commentMarker) {
			continue
		}
		if slices.Contains(QuitCommands, strings.ToLower(line)) {
			return nil
		}
		args, err := shellquote.Split(line)
		if err != nil {
			p.Println("error:", err)
			continue
		}
		if err := s.Exec(ctx, args); err != nil {
			s.log.Debug("Command failed", "line", line, "error", err)
			if !errors.Is(err, ErrUsage) {
				p.Println("error:", err)
			}
		}
	}
}
