package signalx

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
)

// exit is swapped out in tests.
var exit = os.Exit

// InterruptCtx returns a context that's cancelled when one of the given signals is received.
// A second signal calls [os.Exit] with a non-zero exit code, for when shutdown is stuck.
// The returned stop function releases the signal handler, and must be called once the context is no longer needed.
func InterruptCtx(parent context.Context, log *slog.Logger, signals ...os.Signal) (ctx context.Context, stop func()) {
	if len(signals) == 0 {
		panic("no signals passed to InterruptCtx")
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 2)
	done := make(chan struct{})
	signal.Notify(sigs, signals...)
	go func() {
		defer cancel()
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig.String())
			cancel()
		case <-done:
			return
		}
		select {
		case sig := <-sigs:
			log.Warn("Received second signal, exiting", "signal", sig.String())
			exit(1)
		case <-done:
		}
	}()
	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(done)
			cancel()
		})
	}
}
