package ingest

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ProgressReporter receives chunk-level progress during a build.
type ProgressReporter interface {
	Start(total int)
	Add(n int)
	Finish()
}

// BuildProgress renders a progress bar on stderr.
type BuildProgress struct {
	enabled bool
	bar     *progressbar.ProgressBar
}

// NewBuildProgress returns a bar-backed reporter, or nil when disabled.
func NewBuildProgress(enabled bool) ProgressReporter {
	if !enabled {
		return nil
	}
	return &BuildProgress{enabled: true}
}

func (p *BuildProgress) Start(total int) {
	if !p.enabled || total <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("embedding"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *BuildProgress) Add(n int) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(n)
}

func (p *BuildProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

// DefaultProgressEnabled reports whether stderr is attached to a terminal.
func DefaultProgressEnabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
