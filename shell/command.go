package shell

import (
	"errors"
	"fmt"
	flag "github.com/spf13/pflag"
	"regexp"
	"slices"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage error") // ErrUsage means the command was called incorrectly, and its usage should be shown.

	keyCleansePattern = regexp.MustCompile(`\s`)
)

// CommandFunc runs a [Command] with its parsed flags. Positional arguments are available from flags.Args().
type CommandFunc = func(flags *flag.FlagSet, printer *Printer) error

// FlagFunc defines the flags a [Command] accepts.
type FlagFunc = func(flags *flag.FlagSet)

// Command is a single shell command.
// Flags are defined fresh for every call, so values never carry over from one line to the next.
// Flags must come before positional arguments, so a param like "-1" isn't mistaken for a flag.
type Command struct {
	key        string
	shortUsage string
	usage      string
	define     FlagFunc
	exec       CommandFunc
	printer    *Printer
	aliases    []string
}

func cleanseKey(key string) string {
	return keyCleansePattern.ReplaceAllString(strings.ToLower(key), "")
}

// Does specifies the [CommandFunc] that should be executed by this [Command].
func (c *Command) Does(commandFunc CommandFunc) *Command {
	if commandFunc == nil {
		return c
	}
	c.exec = commandFunc
	return c
}

// WithFlags specifies the flags this [Command] accepts.
func (c *Command) WithFlags(define FlagFunc) *Command {
	c.define = define
	return c
}

// Usage sets the argument synopsis shown after the command name in help output.
func (c *Command) Usage(format string, args ...any) *Command {
	c.usage = fmt.Sprintf(format, args...)
	return c
}

func (c *Command) flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet(c.key, flag.ContinueOnError)
	fs.BoolP("help", "h", false, "Prints this usage information")
	fs.SetInterspersed(false)
	fs.SetOutput(c.printer.Writer())
	if c.define != nil {
		c.define(fs)
	}
	fs.Usage = func() {
		c.printUsage(fs)
	}
	return fs
}

func (c *Command) printUsage(fs *flag.FlagSet) {
	var buf strings.Builder
	buf.WriteString(c.shortUsage + "\n\nUSAGE:\n" + c.key)
	if len(c.usage) > 0 {
		buf.WriteString(" " + c.usage)
	}
	buf.WriteString("\n\nFLAGS\n")
	buf.WriteString(fs.FlagUsages())
	c.printer.Print(buf.String())
}

// Exec parses args and runs the [Command].
// An [ErrUsage] error returned from the [CommandFunc] prints usage information along with the error.
func (c *Command) Exec(args []string) error {
	fs := c.flagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if MustGet(fs.GetBool("help")) {
		fs.Usage()
		return nil
	}
	if c.exec == nil {
		fs.Usage()
		return nil
	}
	err := c.exec(fs, c.printer)
	if errors.Is(err, ErrUsage) {
		c.printer.Println(err)
		c.printer.Println()
		fs.Usage()
	}
	return err
}

// CommandSet is the group of commands available in a shell.
type CommandSet struct {
	commands map[string]*Command
	aliases  map[string]*Command
	printer  *Printer
}

func NewCommandSet(printer *Printer) *CommandSet {
	if printer == nil {
		printer = NewPrinter(nil)
	}
	return &CommandSet{printer: printer}
}

// AddCommand adds a [Command] to this [CommandSet].
// The key is cleansed to remove spaces, and normalized to lower-case.
// Aliases may be added as a way to support shorter variants of the same [Command].
func (s *CommandSet) AddCommand(key, shortUsage string, aliases ...string) *Command {
	key = cleanseKey(key)
	cmd := &Command{key: key, shortUsage: shortUsage, printer: s.printer}
	if s.commands == nil {
		s.commands = map[string]*Command{}
	}
	s.commands[key] = cmd
	if len(aliases) > 0 {
		_aliases := make([]string, 0, len(aliases))
		for _, alias := range aliases {
			alias = cleanseKey(alias)
			if len(alias) == 0 {
				continue
			}
			if s.aliases == nil {
				s.aliases = map[string]*Command{}
			}
			s.aliases[alias] = cmd
			_aliases = append(_aliases, alias)
		}
		slices.Sort(_aliases)
		cmd.aliases = _aliases
	}
	return cmd
}

// Printer returns the [Printer] shared by every [Command] in this [CommandSet].
func (s *CommandSet) Printer() *Printer {
	return s.printer
}

// Exec runs the [Command] named by the first argument.
func (s *CommandSet) Exec(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no arguments", ErrUnknownCommand)
	}
	key := strings.ToLower(args[0])
	cmd, ok := s.commands[key]
	if !ok {
		cmd, ok = s.aliases[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
		}
	}
	return cmd.Exec(args[1:])
}

// CommandUsages returns the short usage of every [Command], sorted by key.
func (s *CommandSet) CommandUsages() string {
	var (
		buf         strings.Builder
		keys        = make([]string, 0, len(s.commands))
		withAliases = make([]string, 0, len(s.commands))
		maxLen      int
	)
	for key := range s.commands {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		label := key
		if cmd := s.commands[key]; len(cmd.aliases) > 0 {
			label = strings.Join(append([]string{key}, cmd.aliases...), ", ")
		}
		withAliases = append(withAliases, label)
		maxLen = max(maxLen, len(label))
	}
	fmtStr := fmt.Sprintf("  %%-%ds\t%%s\n", maxLen)
	for i, key := range keys {
		buf.WriteString(fmt.Sprintf(fmtStr, withAliases[i], s.commands[key].shortUsage))
	}
	return buf.String()
}

// usageErr creates an [ErrUsage] error, passing format and args to [fmt.Errorf].
func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
