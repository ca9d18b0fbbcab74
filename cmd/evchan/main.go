package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/saylorsolutions/evchan/channel"
	"github.com/saylorsolutions/evchan/config"
	"github.com/saylorsolutions/evchan/env"
	"github.com/saylorsolutions/evchan/shell"
	"github.com/saylorsolutions/evchan/signalx"
	"github.com/saylorsolutions/evchan/slogx"
	flag "github.com/spf13/pflag"
	"io"
	"log/slog"
	"os"
	"syscall"
)

const envPrefix = "EVCHAN"

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx, stop := signalx.InterruptCtx(context.Background(), log, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, shell.IsInteractive(os.Stdin), os.Stderr); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

type params struct {
	flags           *flag.FlagSet
	replayCache     bool
	replayOnce      bool
	exclusiveListen bool
	configPath      string
	scriptPath      string
	tracePath       string
	verbose         bool
}

func parseFlags(args []string, out io.Writer) (*params, error) {
	p := &params{flags: flag.NewFlagSet("evchan", flag.ContinueOnError)}
	flags := p.flags
	flags.SetOutput(out)
	flags.BoolVar(&p.replayCache, "replay-cache", channel.Defaults.ReplayCache, "Buffers publishes that have no listener, and replays them to the next subscriber")
	flags.BoolVar(&p.replayOnce, "replay-once", channel.Defaults.ReplayOnce, "Keeps only the most recent buffered publish per event")
	flags.BoolVar(&p.exclusiveListen, "exclusive-listen", channel.Defaults.ExclusiveListen, "A new subscriber replaces the existing listeners for its event")
	flags.StringVarP(&p.configPath, "config", "c", "", "YAML or TOML file with channel and per-event options")
	flags.StringVarP(&p.scriptPath, "script", "s", "", "Runs commands from a file instead of STDIN")
	flags.StringVar(&p.tracePath, "trace", "", "Writes a JSON debug log to this file")
	flags.BoolVarP(&p.verbose, "verbose", "v", env.Bool(envPrefix+"_VERBOSE", false), "Enables debug logging, defaults to "+envPrefix+"_VERBOSE")
	flags.Usage = func() {
		_, _ = fmt.Fprintf(out, `evchan runs an interactive event channel shell.
Commands are read from STDIN, or from a script with --script. Enter "help" in the shell for a list of commands.

Channel options are taken from flags if given, then %s_REPLAY_CACHE, %s_REPLAY_ONCE, and %s_EXCLUSIVE_LISTEN, then the config file.

USAGE:
evchan [FLAGS]

FLAGS
%s`, envPrefix, envPrefix, envPrefix, flags.FlagUsages())
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	return p, nil
}

// options layers the channel-level overrides: changed flags, then the environment, then the config file.
func (p *params) options(doc *config.Document) channel.Options {
	var fromFlags channel.Options
	if p.flags.Changed("replay-cache") {
		fromFlags.ReplayCache = channel.ToggleOf(p.replayCache)
	}
	if p.flags.Changed("replay-once") {
		fromFlags.ReplayOnce = channel.ToggleOf(p.replayOnce)
	}
	if p.flags.Changed("exclusive-listen") {
		fromFlags.ExclusiveListen = channel.ToggleOf(p.exclusiveListen)
	}
	return doc.Options.Merge(env.Options(envPrefix)).Merge(fromFlags)
}

func (p *params) logger(out io.Writer) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if p.verbose {
		level = slog.LevelDebug
	}
	console := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	if len(p.tracePath) == 0 {
		return slog.New(console), io.NopCloser(nil), nil
	}
	trace, err := os.Create(p.tracePath)
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace file: %w", err)
	}
	handler := slogx.MergeHandlers(console, slog.NewJSONHandler(trace, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return slog.New(handler), trace, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, interactive bool, out io.Writer) (err error) {
	p, err := parseFlags(args, out)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	log, closer, err := p.logger(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing trace file: %w", cerr)
		}
	}()

	doc := &config.Document{}
	if len(p.configPath) > 0 {
		doc, err = config.Load(p.configPath)
		if err != nil {
			return err
		}
		log.Debug("Loaded config file", "path", p.configPath, "events", len(doc.Events))
	}
	opts := p.options(doc)
	// opts already includes the document's options, so it replaces them.
	configs := append(doc.ConfigFuncs(),
		channel.WithOptions[string](opts),
		channel.WithLogger[string](log),
	)
	ch, err := channel.New(configs...)
	if err != nil {
		return err
	}
	log.Debug("Created channel", "channel", ch.ID(), "options", channel.Resolve(channel.Options{}, opts))

	in, prompt := stdin, ""
	if interactive {
		prompt = shell.Prompt
	}
	if len(p.scriptPath) > 0 {
		script, err := os.Open(p.scriptPath)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer func() {
			_ = script.Close()
		}()
		in, prompt = script, ""
	}
	sh := shell.New(ch, out, log.With("component", "shell"))
	if len(prompt) > 0 {
		sh.Printer().Println(`Enter "help" for a list of commands, or "quit" to exit.`)
	}
	return sh.Run(ctx, in, prompt)
}
