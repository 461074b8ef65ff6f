package internal

import (
	"fmt"
	"io"
	"os"
	"time"

	_ "code.cloudfoundry.org/go-diodes" // import for lockless writing
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

// CreateDefaultLogger creates the default logger used by the coworkers and rpc
// packages. Output is pretty-printed to stdout through a lockless diode writer.
func CreateDefaultLogger(level zerolog.Level) zerolog.Logger {
	return CreateLogger(os.Stdout, level)
}

// CreateLogger creates a pretty-printing logger writing to out through a lockless
// diode writer. When the diode is full, messages are dropped and the drop count is
// reported on stdout.
func CreateLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	wr := diode.NewWriter(out, 1000, 10*time.Millisecond, func(missed int) {
		_, _ = fmt.Printf("Logger Dropped %d messages", missed)
	})
	return zerolog.New(zerolog.ConsoleWriter{Out: wr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
