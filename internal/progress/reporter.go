// Package progress reports page export progress to a terminal or CI log.
package progress

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives one call per exported page, in order.
type Reporter interface {
	Start(total int)
	Page(current int, path string, status int)
	Finish()
}

// NewReporter returns a CIReporter writing to w if the CI environment
// variable is set, or a TerminalReporter drawing a bar on w otherwise.
func NewReporter(w io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{w: w}
	}
	return &TerminalReporter{w: w}
}

// tally counts pages that did not render with 200 OK.
type tally struct {
	total  int
	failed int
}

func (t *tally) record(status int) bool {
	ok := status == http.StatusOK
	if !ok {
		t.failed++
	}
	return ok
}

func (t *tally) summary() string {
	if t.failed == 0 {
		return fmt.Sprintf("Exported %d pages", t.total)
	}
	return fmt.Sprintf("Exported %d pages, %d failed", t.total, t.failed)
}

// TerminalReporter draws a bar whose description names the page just
// written and the running failure count.
type TerminalReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
	tally
}

func (r *TerminalReporter) Start(total int) {
	r.tally = tally{total: total}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription("Exporting pages"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Page(current int, path string, status int) {
	r.record(status)
	if r.bar == nil {
		return
	}
	desc := path
	if r.failed > 0 {
		desc = fmt.Sprintf("%s (%d failed)", path, r.failed)
	}
	r.bar.Describe(desc)
	_ = r.bar.Set(current)
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	fmt.Fprintln(r.w, r.summary())
}

// CIReporter prints one line per page, suitable for CI logs.
type CIReporter struct {
	w io.Writer
	tally
}

func (r *CIReporter) Start(total int) {
	r.tally = tally{total: total}
	fmt.Fprintf(r.w, "Exporting %d pages\n", total)
}

func (r *CIReporter) Page(current int, path string, status int) {
	outcome := "ok"
	if !r.record(status) {
		outcome = fmt.Sprintf("failed (%d %s)", status, http.StatusText(status))
	}
	fmt.Fprintf(r.w, "[%d/%d] %s %s\n", current, r.total, path, outcome)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.w, r.summary())
}
