package worldengine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/arcweave/worldengine/internal/stats"
)

// warn logs msg through logger and records it into collector's warning
// list formatted as "[ISO8601] [Tick N] message" (spec §6), while the
// slog record carries the same information as structured attributes.
func warn(logger *slog.Logger, collector *stats.Collector, tick int, args ...any) {
	msg := fmt.Sprint(args...)
	logger.Warn(msg, "tick", tick)
	formatted := fmt.Sprintf("[%s] [Tick %d] %s", time.Now().UTC().Format(time.RFC3339), tick, msg)
	collector.RecordWarning(formatted)
}

// warnf is the Printf-style variant of warn.
func warnf(logger *slog.Logger, collector *stats.Collector, tick int, format string, args ...any) {
	warn(logger, collector, tick, fmt.Sprintf(format, args...))
}
