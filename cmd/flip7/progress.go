package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const progressDots = 40

// progressBar prints a row of dots as games finish. A nil bar prints
// nothing.
type progressBar struct {
	mu          sync.Mutex
	w           io.Writer
	total       int
	dotsPrinted int
}

func newProgressBar(w io.Writer, total int) *progressBar {
	fmt.Fprintf(w, "Simulating %d games: ", total)
	return &progressBar{w: w, total: max(total, 1)}
}

// Update is called after each game completes
func (p *progressBar) Update(done, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := min(done, p.total) * progressDots / p.total
	for ; p.dotsPrinted < target; p.dotsPrinted++ {
		fmt.Fprint(p.w, ".")
	}
}

// Done finishes the row with the throughput
func (p *progressBar) Done(elapsed time.Duration) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for ; p.dotsPrinted < progressDots; p.dotsPrinted++ {
		fmt.Fprint(p.w, ".")
	}
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.total) / elapsed.Seconds()
	}
	fmt.Fprintf(p.w, " ✓ %.1fs (%.0f games/sec)\n", elapsed.Seconds(), rate)
}
