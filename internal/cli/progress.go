package cli

import (
	"fmt"
	"io"
	"os"
	"time"
)

// progressStep reports a long-running command on stderr. A nil step is a
// no-op, so callers never check whether progress is enabled.
type progressStep struct {
	out     io.Writer
	label   string
	started time.Time
	total   int
	done    int
}

func startProgress(label string, total int) *progressStep {
	if !progressEnabled() {
		return nil
	}
	p := &progressStep{out: os.Stderr, label: label, started: time.Now(), total: total}
	p.render("")
	return p
}

// Advance counts one finished item.
func (p *progressStep) Advance(item string) {
	if p == nil {
		return
	}
	p.done++
	p.render(item)
}

func (p *progressStep) render(item string) {
	if p.total <= 0 {
		fmt.Fprintf(p.out, "\r%s... ", p.label)
		return
	}
	fmt.Fprintf(p.out, "\r\x1b[K%s... %d/%d %s", p.label, p.done, p.total, truncate(item, 40))
}

func (p *progressStep) Done() {
	if p == nil {
		return
	}
	fmt.Fprintf(p.out, "\r\x1b[K%s... done (%s)\n", p.label, formatDuration(time.Since(p.started)))
}

func (p *progressStep) Fail(err error) {
	if p == nil {
		return
	}
	if err != nil {
		fmt.Fprintf(p.out, "\r\x1b[K%s... failed: %v\n", p.label, err)
		return
	}
	fmt.Fprintf(p.out, "\r\x1b[K%s... failed\n", p.label)
}

func progressEnabled() bool {
	if IsJSONOutput() || IsJSONLOutput() {
		return false
	}
	if noProgress || IsNonInteractive() {
		return false
	}
	if _, ok := os.LookupEnv("FAULTGEN_NO_PROGRESS"); ok {
		return false
	}
	return true
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
