package shell

import (
	"bytes"
	"context"
	"github.com/saylorsolutions/evchan/channel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

const ephemeral = "ephemeral"

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	ch, err := channel.New(channel.WithKeyOption(ephemeral, channel.Options{ReplayCache: channel.Off}))
	require.NoError(t, err)
	var out bytes.Buffer
	return New(ch, &out, nil), &out
}

func runScript(t *testing.T, sh *Shell, script string) {
	t.Helper()
	require.NoError(t, sh.Run(context.Background(), strings.NewReader(script), ""))
}

func TestShell_Run_Transcript(t *testing.T) {
	sh, out := newTestShell(t)
	runScript(t, sh, `
# buffered publishes replay to the first subscriber
pub greet hello
pub greet "hello world"
status greet
sub greet
status greet

sub --reply pong ping
request ping a
sync ping b

defer late x
watch D1
sub --once --reply done late
await D1
status late

pub audit one
watch C4
watch @audit
evict @audit

defer job
watch D2
cancel D2
status job

pub ephemeral z
defer ephemeral
bogus
quit
pub greet never
`)
	expected := `C1 buffered for greet
C2 buffered for greet
greet: listening=0 buffered=2 replay-cache=true replay-once=false exclusive-listen=false
L1 received greet [hello]
L1 received greet [hello world]
L1 subscribed to greet
greet: listening=1 buffered=0 replay-cache=true replay-once=false exclusive-listen=false
L2 subscribed to ping
L2 received ping [a]
result: pong
delivered
L2 received ping [b]
result: pong
D1 pending on C3
watching D1
L3 received late [x]
L3 subscribed to late
D1 resolved: done
late: listening=0 buffered=0 replay-cache=true replay-once=false exclusive-listen=false
C4 buffered for audit
watching C4
watching @audit
teardown C4
teardown @audit
D2 pending on C5
watching D2
teardown D2
D2 rejected: manually cancelled
job: listening=0 buffered=0 replay-cache=true replay-once=false exclusive-listen=false
dropped, nothing is listening to ephemeral
D3 rejected: publish dropped
error: unknown command: bogus
`
	assert.Equal(t, expected, out.String())
}

func TestShell_Run_Prompt(t *testing.T) {
	sh, out := newTestShell(t)
	require.NoError(t, sh.Run(context.Background(), strings.NewReader("status greet\n"), Prompt))
	assert.Equal(t, Prompt+"greet: listening=0 buffered=0 replay-cache=true replay-once=false exclusive-listen=false\n"+Prompt, out.String())
}

func TestShell_Run_Cancelled(t *testing.T) {
	sh, _ := newTestShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, sh.Run(ctx, strings.NewReader("pub greet hello\n"), ""))
}

func TestShell_Run_QuoteError(t *testing.T) {
	sh, out := newTestShell(t)
	runScript(t, sh, `pub greet "unterminated`)
	assert.True(t, strings.HasPrefix(out.String(), "error: "))
	assert.Equal(t, 0, sh.Channel().Buffered("greet"))
}

func TestShell_Exec_Usage(t *testing.T) {
	sh, out := newTestShell(t)
	err := sh.Exec(context.Background(), []string{"sub"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "usage error: missing event name")
	assert.Contains(t, out.String(), "sub [--once] [--reply VALUE] EVENT")

	out.Reset()
	assert.NoError(t, sh.Exec(context.Background(), []string{"sub", "--help"}))
	assert.Contains(t, out.String(), "--reply string")

	out.Reset()
	err = sh.Exec(context.Background(), []string{"sub", "--bogus", "greet"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestShell_FlagsDoNotCarryOver(t *testing.T) {
	sh, out := newTestShell(t)
	runScript(t, sh, `
sub --once greet
sub greet
pub greet 1
pub greet 2
`)
	assert.Equal(t, `L1 subscribed to greet
L2 subscribed to greet
L1 received greet [1]
L2 received greet [1]
delivered
L2 received greet [2]
delivered
`, out.String())
}

func TestShell_ParamsAfterEvent(t *testing.T) {
	sh, out := newTestShell(t)
	runScript(t, sh, `
sub greet
pub greet -1 --once
`)
	assert.Contains(t, out.String(), "L1 received greet [-1 --once]")
}

func TestShell_Identities(t *testing.T) {
	sh, out := newTestShell(t)
	err := sh.Exec(context.Background(), []string{"evict", "L9"})
	assert.ErrorIs(t, err, ErrUnknownID)

	err = sh.Exec(context.Background(), []string{"evict"})
	assert.ErrorIs(t, err, ErrUsage)

	err = sh.Exec(context.Background(), []string{"evict", "@"})
	assert.ErrorIs(t, err, ErrUsage)

	runScript(t, sh, "sub greet")
	out.Reset()
	err = sh.Exec(context.Background(), []string{"await", "L1"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "L1 is not a deferred result")

	assert.NoError(t, sh.Exec(context.Background(), []string{"evict", "l1"}))
	assert.Equal(t, 0, sh.Channel().Listening("greet"))
}

func TestShell_Unwatch(t *testing.T) {
	sh, out := newTestShell(t)
	runScript(t, sh, `
sub greet
watch L1
unwatch L1
evict L1
`)
	assert.NotContains(t, out.String(), "teardown")
	assert.Contains(t, out.String(), "stopped watching L1")

	err := sh.Exec(context.Background(), []string{"unwatch", "L1"})
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestShell_Await_Timeout(t *testing.T) {
	sh, out := newTestShell(t)
	runScript(t, sh, `
defer late
await --timeout 10ms D1
`)
	assert.Contains(t, out.String(), "D1 still pending: context deadline exceeded")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	out.Reset()
	require.NoError(t, sh.Exec(ctx, []string{"await", "--timeout", "0", "d1"}))
	assert.Contains(t, out.String(), "D1 still pending")
}

func TestShell_Request_Buffered(t *testing.T) {
	sh, out := newTestShell(t)
	runScript(t, sh, `
request --once ping
sub --reply pong ping
`)
	assert.Equal(t, `C1 buffered for ping
L1 received ping []
C1 result: pong
L1 subscribed to ping
`, out.String())
}

func TestShell_Help(t *testing.T) {
	sh, out := newTestShell(t)
	require.NoError(t, sh.Exec(context.Background(), []string{"help"}))
	for _, cmd := range []string{"sub, subscribe", "pub, publish", "request, req", "sync", "defer", "await", "cancel", "evict", "watch", "unwatch", "status"} {
		assert.Contains(t, out.String(), cmd)
	}
}
