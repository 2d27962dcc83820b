package main

import (
	"io"

	"github.com/fatih/color"

	"github.com/youyoumu/hanayomi/internal/app/importer"
)

var _ importer.Progress = (*colorProgress)(nil)

// colorProgress prints one colored line per pipeline stage and per parsed
// bank file.
type colorProgress struct {
	w       io.Writer
	stage   *color.Color
	done    *color.Color
	failed  *color.Color
	counter *color.Color
}

func newColorProgress(w io.Writer) *colorProgress {
	return &colorProgress{
		w:       w,
		stage:   color.New(color.FgCyan, color.Bold),
		done:    color.New(color.FgGreen, color.Bold),
		failed:  color.New(color.FgRed, color.Bold),
		counter: color.New(color.Faint),
	}
}

func (p *colorProgress) Stage(s importer.State) {
	c := p.stage
	switch s {
	case importer.StateCommitted:
		c = p.done
	case importer.StateFailed:
		c = p.failed
	}
	c.Fprintf(p.w, "==> %s\n", s)
}

func (p *colorProgress) Report(processed, total int, label string) {
	p.counter.Fprintf(p.w, "    [%d/%d] ", processed, total)
	io.WriteString(p.w, label+"\n")
}
