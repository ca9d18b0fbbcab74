package shell

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Printer is where the shell writes everything the user should see.
// Listeners may be called from any goroutine that publishes to the channel, so writes are serialized.
type Printer struct {
	mux sync.Mutex
	out io.Writer
}

// NewPrinter creates a [Printer] writing to out, or to STDERR if out is nil.
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = os.Stderr
	}
	return &Printer{out: out}
}

// Writer returns a writer that's serialized with the rest of the Printer's output.
func (p *Printer) Writer() io.Writer {
	return printerWriter{p}
}

func (p *Printer) write(fn func(out io.Writer)) {
	p.mux.Lock()
	defer p.mux.Unlock()
	fn(p.out)
}

func (p *Printer) Print(msg ...any) {
	p.write(func(out io.Writer) {
		_, _ = fmt.Fprint(out, msg...)
	})
}

func (p *Printer) Printf(format string, args ...any) {
	p.write(func(out io.Writer) {
		_, _ = fmt.Fprintf(out, format, args...)
	})
}

func (p *Printer) Println(msg ...any) {
	p.write(func(out io.Writer) {
		_, _ = fmt.Fprintln(out, msg...)
	})
}

type printerWriter struct {
	p *Printer
}

func (w printerWriter) Write(data []byte) (n int, err error) {
	w.p.write(func(out io.Writer) {
		n, err = out.Write(data)
	})
	return n, err
}
