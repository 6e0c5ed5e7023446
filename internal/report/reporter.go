// Package report provides the progress/event sink used by the training and
// persistence layers.
//
// All long-running operations take an explicit Reporter instead of writing to
// a process-wide logger, so library callers (and tests) decide where output
// goes. The default console implementation renders a PyTorch-style progress
// bar plus plain event lines on stderr.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Reporter receives progress updates and diagnostic events from long-running
// operations.
//
// Implementations must tolerate being called with step == total more than
// once; the final call marks completion.
type Reporter interface {
	// Progress reports completion of step out of total steps, with a set of
	// named metrics (e.g. "loss", "roc_auc") for display.
	Progress(step, total int, metrics map[string]float64)

	// Eventf reports a one-off diagnostic event (fold boundary, early stop,
	// artifact save, warning).
	Eventf(format string, args ...any)
}

// Nop discards all progress and events. Useful default for library callers
// and tests.
type Nop struct{}

// Progress implements Reporter.
func (Nop) Progress(step, total int, metrics map[string]float64) {}

// Eventf implements Reporter.
func (Nop) Eventf(format string, args ...any) {}

// Console renders progress as an in-place updating bar and events as plain
// lines.
type Console struct {
	out         io.Writer
	description string
	width       int
	startTime   time.Time
	barActive   bool
}

// NewConsole creates a console reporter writing to w (os.Stderr when w is
// nil). The description prefixes the progress bar.
func NewConsole(w io.Writer, description string) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{
		out:         w,
		description: description,
		width:       40,
	}
}

// Progress implements Reporter.
func (c *Console) Progress(step, total int, metrics map[string]float64) {
	if total <= 0 {
		return
	}
	if !c.barActive {
		c.startTime = time.Now()
		c.barActive = true
	}

	percentage := float64(step) / float64(total)
	if percentage > 1.0 {
		percentage = 1.0
	}
	filled := int(percentage * float64(c.width))
	if filled > c.width {
		filled = c.width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat(" ", c.width-filled)

	line := fmt.Sprintf("\r%s: %3.0f%%|%s| %d/%d", c.description, percentage*100, bar, step, total)

	elapsed := time.Since(c.startTime)
	if step > 0 && percentage > 0 {
		eta := time.Duration(float64(elapsed)/percentage) - elapsed
		line += fmt.Sprintf(" [%s<%s]", formatDuration(elapsed), formatDuration(eta))
	}

	if len(metrics) > 0 {
		names := make([]string, 0, len(metrics))
		for name := range metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%.4f", name, metrics[name]))
		}
		line += " " + strings.Join(parts, " ")
	}

	fmt.Fprint(c.out, line)
	if step >= total {
		fmt.Fprintln(c.out)
		c.barActive = false
	}
}

// Eventf implements Reporter. An active progress bar is moved to its own line
// first so the event does not overwrite it.
func (c *Console) Eventf(format string, args ...any) {
	if c.barActive {
		fmt.Fprintln(c.out)
		c.barActive = false
	}
	fmt.Fprintf(c.out, format+"\n", args...)
}

// formatDuration renders a duration as mm:ss, matching common training
// progress bars.
func formatDuration(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
