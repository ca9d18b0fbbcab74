package shell

import (
	"bytes"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestCommandSet_Exec(t *testing.T) {
	set := NewCommandSet(NewPrinter(new(bytes.Buffer)))
	assert.ErrorIs(t, set.Exec(nil), ErrUnknownCommand)

	cmd := set.AddCommand("Test", "test command", "t")
	assert.NoError(t, set.Exec([]string{"test"}), "A command without a func prints usage")

	executed := 0
	cmd.Does(func(flags *flag.FlagSet, _ *Printer) error {
		executed++
		return nil
	})
	assert.NoError(t, set.Exec([]string{"TEST"}))
	assert.NoError(t, set.Exec([]string{"t"}))
	assert.Equal(t, 2, executed)

	assert.ErrorIs(t, set.Exec([]string{"Does", "not", "exist"}), ErrUnknownCommand)
}

func TestCommand_FreshFlags(t *testing.T) {
	set := NewCommandSet(NewPrinter(new(bytes.Buffer)))
	var seen []string
	set.AddCommand("echo", "echoes a message").
		WithFlags(func(flags *flag.FlagSet) {
			flags.String("message", "default", "Sets a message")
		}).
		Does(func(flags *flag.FlagSet, _ *Printer) error {
			seen = append(seen, MustGet(flags.GetString("message")))
			return nil
		})
	assert.NoError(t, set.Exec([]string{"echo", "--message", "hi"}))
	assert.NoError(t, set.Exec([]string{"echo"}))
	assert.Equal(t, []string{"hi", "default"}, seen)
}

func TestCommand_UsageError(t *testing.T) {
	var out bytes.Buffer
	set := NewCommandSet(NewPrinter(&out))
	set.AddCommand("command", "test command").
		Usage("ARG").
		Does(func(_ *flag.FlagSet, _ *Printer) error {
			return usageErr("test usage error")
		})
	err := set.Exec([]string{"command"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Equal(t, `usage error: test usage error

test command

USAGE:
command ARG

FLAGS
  -h, --help   Prints this usage information
`, out.String())
}

func TestCommandSet_CommandUsages(t *testing.T) {
	set := NewCommandSet(NewPrinter(new(bytes.Buffer)))
	set.AddCommand("pub", "publishes", "publish")
	set.AddCommand("evict", "evicts")
	assert.Equal(t, "  evict       \tevicts\n  pub, publish\tpublishes\n", set.CommandUsages())
}
