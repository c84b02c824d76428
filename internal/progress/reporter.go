package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback during indexing runs.
type Reporter interface {
	Start(stage string, total int)
	Update(current int)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(stage string, total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(stage),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int) {
	if r.bar != nil {
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	stage string
	total int
}

func (r *CIReporter) Start(stage string, total int) {
	r.stage = stage
	r.total = total
	fmt.Fprintf(os.Stderr, "%s: %d items\n", stage, total)
}

func (r *CIReporter) Update(current int) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, r.total, r.stage)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "done")
}
