package main

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"letterbox/internal/batch"
)

// progressObserver draws one progress bar per pass. It is also the console
// log writer while progress is shown: the bar is cleared before each log line
// and redrawn after it, so lines never land in the middle of the bar.
type progressObserver struct {
	mu  sync.Mutex
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressObserver(out io.Writer) *progressObserver {
	return &progressObserver{out: out}
}

// Write implements io.Writer for console log output. Each call is expected to
// carry whole lines.
func (p *progressObserver) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return p.out.Write(b)
	}
	_ = p.bar.Clear()
	n, err := p.out.Write(b)
	_ = p.bar.RenderBlank()
	return n, err
}

func (p *progressObserver) OnPassStart(pass batch.Pass, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finish()
	if total == 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(titleLabel(string(pass))),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(p.out, "\n") }),
	)
}

func (p *progressObserver) OnItemDone(done, total int, _ batch.ItemResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_ = p.bar.Set(done)
	if done >= total {
		p.finish()
	}
}

// finish completes the current bar. Callers hold p.mu.
func (p *progressObserver) finish() {
	if p.bar == nil {
		return
	}
	if !p.bar.IsFinished() {
		_ = p.bar.Finish()
	}
	p.bar = nil
}
