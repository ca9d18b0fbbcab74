package shell

import (
	"context"
	"errors"
	"fmt"
	"github.com/saylorsolutions/evchan/channel"
	flag "github.com/spf13/pflag"
	"io"
	"log/slog"
	"strings"
	"time"
)

const (
	prefixListener = "L"
	prefixCall     = "C"
	prefixDeferred = "D"
	keyMarker      = "@"
)

var (
	ErrUnknownID = errors.New("unknown identity")
)

// Shell drives a [channel.Channel] keyed by string, one command line at a time.
//
// Listeners, buffered publishes, and deferred results are given short labels as they're created (L1, C1, D1),
// and an event may be named as an identity with a leading "@".
// Everything a listener, result, or teardown hook does is printed, so a script produces a readable transcript.
type Shell struct {
	ch       *channel.Channel[string]
	log      *slog.Logger
	commands *CommandSet
	printer  *Printer
	ctx      context.Context
	ids      map[string]channel.Identity
	unwatch  map[string]func()
	counters map[string]int
}

// New creates a [Shell] for ch, writing output to out.
// A nil logger discards log output.
func New(ch *channel.Channel[string], out io.Writer, log *slog.Logger) *Shell {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Shell{
		ch:       ch,
		log:      log,
		printer:  NewPrinter(out),
		ctx:      context.Background(),
		ids:      map[string]channel.Identity{},
		unwatch:  map[string]func(){},
		counters: map[string]int{},
	}
	s.commands = NewCommandSet(s.printer)
	s.register()
	return s
}

// Channel returns the channel being driven.
func (s *Shell) Channel() *channel.Channel[string] {
	return s.ch
}

// Printer returns the [Printer] used for all output.
func (s *Shell) Printer() *Printer {
	return s.printer
}

// Exec runs one command, already split into arguments.
// The context bounds any command that waits, like await.
func (s *Shell) Exec(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx
	defer func() {
		s.ctx = context.Background()
	}()
	s.log.Debug("Executing command", "args", args)
	return s.commands.Exec(args)
}

func (s *Shell) register() {
	cmds := s.commands
	cmds.AddCommand("sub", "Subscribes a listener that prints what it receives", "subscribe").
		Usage("[--once] [--reply VALUE] EVENT").
		WithFlags(func(flags *flag.FlagSet) {
			flags.Bool("once", false, "Evicts the listener after its first call")
			flags.String("reply", "", "Value the listener returns to request publishers")
		}).
		Does(s.subscribe)
	cmds.AddCommand("pub", "Publishes params to an event", "publish").
		Usage("EVENT [PARAM...]").
		Does(s.publish)
	cmds.AddCommand("request", "Publishes and prints each listener result as it arrives", "req").
		Usage("[--once] EVENT [PARAM...]").
		WithFlags(func(flags *flag.FlagSet) {
			flags.Bool("once", false, "Only the first result is printed")
		}).
		Does(s.request)
	cmds.AddCommand("sync", "Publishes and prints the first result from a current listener").
		Usage("EVENT [PARAM...]").
		Does(s.publishSync)
	cmds.AddCommand("defer", "Publishes and returns a deferred result that may be awaited or cancelled").
		Usage("EVENT [PARAM...]").
		Does(s.publishDeferred)
	cmds.AddCommand("await", "Waits for a deferred result").
		Usage("[--timeout DURATION] DEFERRED").
		WithFlags(func(flags *flag.FlagSet) {
			flags.Duration("timeout", time.Second, "How long to wait, zero waits until the shell is interrupted")
		}).
		Does(s.await)
	cmds.AddCommand("cancel", "Cancels a deferred result").
		Usage("DEFERRED...").
		Does(s.cancel)
	cmds.AddCommand("evict", "Evicts listeners, buffered publishes, deferred results, or whole events").
		Usage("ID...").
		Does(s.evict)
	cmds.AddCommand("watch", "Prints a message when an identity is evicted").
		Usage("ID").
		Does(s.watch)
	cmds.AddCommand("unwatch", "Removes a teardown watch without evicting anything").
		Usage("ID").
		Does(s.removeWatch)
	cmds.AddCommand("status", "Prints the listener count, buffer size, and resolved options for an event").
		Usage("EVENT").
		Does(s.status)
	cmds.AddCommand("help", "Prints the available commands", "?").
		Does(func(_ *flag.FlagSet, p *Printer) error {
			p.Print("COMMANDS\n" + s.commands.CommandUsages())
			p.Println("Identities are labels like L1, C1, D1, or an event prefixed with @.")
			return nil
		})
}

func (s *Shell) nextLabel(prefix string) string {
	s.counters[prefix]++
	return fmt.Sprintf("%s%d", prefix, s.counters[prefix])
}

func (s *Shell) lookup(label string) (channel.Identity, error) {
	if event, ok := strings.CutPrefix(label, keyMarker); ok {
		if len(event) == 0 {
			return nil, usageErr("missing event name after %s", keyMarker)
		}
		return channel.Key(event), nil
	}
	id, ok := s.ids[strings.ToUpper(label)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownID, label)
	}
	return id, nil
}

func (s *Shell) deferred(label string) (*channel.Deferred, error) {
	id, err := s.lookup(label)
	if err != nil {
		return nil, err
	}
	d, ok := id.(*channel.Deferred)
	if !ok {
		return nil, usageErr("%s is not a deferred result", label)
	}
	return d, nil
}

func toParams(args []string) []channel.Param {
	params := make([]channel.Param, len(args))
	for i, arg := range args {
		params[i] = arg
	}
	return params
}

func eventArgs(flags *flag.FlagSet) (string, []channel.Param, error) {
	var event string
	if err := MapArgs(flags.Args(), 1, &event); err != nil {
		return "", nil, usageErr("missing event name")
	}
	return event, toParams(flags.Args()[1:]), nil
}

func (s *Shell) subscribe(flags *flag.FlagSet, p *Printer) error {
	event, _, err := eventArgs(flags)
	if err != nil {
		return err
	}
	var (
		label    = s.nextLabel(prefixListener)
		once     = MustGet(flags.GetBool("once"))
		reply    = MustGet(flags.GetString("reply"))
		hasReply = flags.Changed("reply")
	)
	listener := func(params ...channel.Param) any {
		p.Printf("%s received %s %v\n", label, event, params)
		if hasReply {
			return reply
		}
		return nil
	}
	subscribe := s.ch.Subscribe
	if once {
		subscribe = s.ch.SubscribeOnce
	}
	token, err := subscribe(event, listener)
	if err != nil {
		return err
	}
	s.ids[label] = token
	p.Printf("%s subscribed to %s\n", label, event)
	return nil
}

func (s *Shell) pending(p *Printer, event string, token channel.Token, pending bool) string {
	if !pending {
		p.Println("delivered")
		return ""
	}
	if token.IsZero() {
		p.Printf("dropped, nothing is listening to %s\n", event)
		return ""
	}
	label := s.nextLabel(prefixCall)
	s.ids[label] = token
	p.Printf("%s buffered for %s\n", label, event)
	return label
}

func (s *Shell) publish(flags *flag.FlagSet, p *Printer) error {
	event, params, err := eventArgs(flags)
	if err != nil {
		return err
	}
	token, pending := s.ch.Publish(event, params...)
	s.pending(p, event, token, pending)
	return nil
}

func (s *Shell) request(flags *flag.FlagSet, p *Printer) error {
	event, params, err := eventArgs(flags)
	if err != nil {
		return err
	}
	var label string
	onResult := func(result any) {
		if len(label) > 0 {
			p.Printf("%s result: %v\n", label, result)
			return
		}
		p.Printf("result: %v\n", result)
	}
	publish := s.ch.PublishResult
	if MustGet(flags.GetBool("once")) {
		publish = s.ch.PublishOnceResult
	}
	token, pending, err := publish(event, onResult, params...)
	if err != nil {
		return err
	}
	label = s.pending(p, event, token, pending)
	return nil
}

func (s *Shell) publishSync(flags *flag.FlagSet, p *Printer) error {
	event, params, err := eventArgs(flags)
	if err != nil {
		return err
	}
	result, ok := s.ch.PublishSync(event, params...)
	if !ok {
		p.Printf("no result, nothing is listening to %s\n", event)
		return nil
	}
	p.Printf("result: %v\n", result)
	return nil
}

func (s *Shell) publishDeferred(flags *flag.FlagSet, p *Printer) error {
	event, params, err := eventArgs(flags)
	if err != nil {
		return err
	}
	d := s.ch.PublishDeferred(event, params...)
	label := s.nextLabel(prefixDeferred)
	s.ids[label] = d
	if d.Settled() {
		printSettled(p, label, d)
		return nil
	}
	call := s.nextLabel(prefixCall)
	s.ids[call] = d.Token()
	p.Printf("%s pending on %s\n", label, call)
	return nil
}

func printSettled(p *Printer, label string, d *channel.Deferred) {
	result, err := d.AwaitTimeout()
	if err != nil {
		p.Printf("%s rejected: %v\n", label, err)
		return
	}
	p.Printf("%s resolved: %v\n", label, result)
}

func (s *Shell) await(flags *flag.FlagSet, p *Printer) error {
	var label string
	if err := MapArgs(flags.Args(), 1, &label); err != nil {
		return usageErr("missing deferred label")
	}
	d, err := s.deferred(label)
	if err != nil {
		return err
	}
	ctx := s.ctx
	if timeout := MustGet(flags.GetDuration("timeout")); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	select {
	case <-d.Done():
		printSettled(p, strings.ToUpper(label), d)
	case <-ctx.Done():
		p.Printf("%s still pending: %v\n", strings.ToUpper(label), ctx.Err())
	}
	return nil
}

func (s *Shell) cancel(flags *flag.FlagSet, p *Printer) error {
	if flags.NArg() == 0 {
		return usageErr("missing deferred label")
	}
	for _, label := range flags.Args() {
		d, err := s.deferred(label)
		if err != nil {
			return err
		}
		d.Cancel()
		printSettled(p, strings.ToUpper(label), d)
	}
	return nil
}

func (s *Shell) identities(args []string) ([]channel.Identity, error) {
	if len(args) == 0 {
		return nil, usageErr("missing identity")
	}
	ids := make([]channel.Identity, len(args))
	for i, label := range args {
		id, err := s.lookup(label)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func (s *Shell) evict(flags *flag.FlagSet, _ *Printer) error {
	ids, err := s.identities(flags.Args())
	if err != nil {
		return err
	}
	return s.ch.Evict(ids...)
}

func (s *Shell) watch(flags *flag.FlagSet, p *Printer) error {
	var label string
	if err := MapArgs(flags.Args(), 1, &label); err != nil {
		return usageErr("missing identity")
	}
	id, err := s.lookup(label)
	if err != nil {
		return err
	}
	name := label
	if !strings.HasPrefix(label, keyMarker) {
		name = strings.ToUpper(label)
	}
	unwatch, err := s.ch.WatchTeardown(id, func() {
		p.Printf("teardown %s\n", name)
	})
	if err != nil {
		return err
	}
	s.unwatch[name] = unwatch
	p.Printf("watching %s\n", name)
	return nil
}

func (s *Shell) removeWatch(flags *flag.FlagSet, p *Printer) error {
	var label string
	if err := MapArgs(flags.Args(), 1, &label); err != nil {
		return usageErr("missing identity")
	}
	name := label
	if !strings.HasPrefix(label, keyMarker) {
		name = strings.ToUpper(label)
	}
	unwatch, ok := s.unwatch[name]
	if !ok {
		return fmt.Errorf("%w: %s is not watched", ErrUnknownID, label)
	}
	delete(s.unwatch, name)
	unwatch()
	p.Printf("stopped watching %s\n", name)
	return nil
}

func (s *Shell) status(flags *flag.FlagSet, p *Printer) error {
	var event string
	if err := MapArgs(flags.Args(), 1, &event); err != nil {
		return usageErr("missing event name")
	}
	opts := s.ch.Resolved(event)
	p.Printf("%s: listening=%d buffered=%d replay-cache=%t replay-once=%t exclusive-listen=%t\n",
		event, s.ch.Listening(event), s.ch.Buffered(event), opts.ReplayCache, opts.ReplayOnce, opts.ExclusiveListen)
	return nil
}
