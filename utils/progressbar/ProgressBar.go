// Package progressbar draws a textual progress bar on the terminal.
package progressbar

import (
	"fmt"
	"strings"
	"time"
)

// ProgressBar is a progress bar that redraws itself on a background
// goroutine, so the caller's loop is never blocked on terminal IO.
type ProgressBar struct {
	// width is the bar's width in characters
	width float64

	// maxProgress is the number of Increment() calls that correspond
	// to 100%
	maxProgress float64

	// currentProgress counts the Increment() calls made so far
	currentProgress float64

	// incrementEvent carries the progress count to the drawing
	// goroutine
	incrementEvent chan float64

	closeEvent chan struct{}
	closed     bool

	updateEvery       time.Duration
	updateAtIncrement bool
}

// NewProgressBar returns a progress bar that is width characters wide
// and reaches 100% after max Increment() calls. The bar redraws every
// updateEvery, and additionally on every Increment() call when
// updateAtIncrement is set.
func NewProgressBar(width, max int, updateEvery time.Duration,
	updateAtIncrement bool) *ProgressBar {
	return &ProgressBar{
		width:             float64(width),
		maxProgress:       float64(max),
		currentProgress:   0,
		incrementEvent:    make(chan float64),
		closeEvent:        make(chan struct{}),
		closed:            false,
		updateEvery:       updateEvery,
		updateAtIncrement: updateAtIncrement,
	}
}

// Increment records that one more unit of work finished. Call it once
// per iteration of the loop being tracked.
func (p *ProgressBar) Increment() {
	go func() {
		if p.currentProgress < p.maxProgress && !p.closed {
			p.incrementEvent <- p.currentProgress
			p.currentProgress++
		}
	}()
}

// Close stops the bar from drawing and releases its resources.
// Closing an already closed bar panics.
func (pbar *ProgressBar) Close() {
	if pbar.closed {
		panic("close: close on closed progress bar")
	}
	close(pbar.closeEvent)
	pbar.closed = true
	fmt.Println() // Move past the bar's line
}

// Display starts drawing the bar. Call it at most once per bar.
func (pbar *ProgressBar) Display() {
	go func() {
		currentProgress := pbar.currentProgress
		maxProgress := pbar.maxProgress
		width := pbar.width

		updateEvery := pbar.updateEvery
		tick := time.NewTicker(updateEvery)
		updateAtIncrement := pbar.updateAtIncrement

		var elapsedTime time.Duration = 0 * time.Second

		var bar strings.Builder

		for {
			select {
			// Progress advanced. Redraw immediately only when asked to.
			case currentProgress = <-pbar.incrementEvent:
				if !updateAtIncrement {
					continue
				}

			// Periodic redraw
			case <-tick.C:
				elapsedTime += updateEvery

			case <-pbar.closeEvent:
				close(pbar.incrementEvent)
				tick.Stop()
				return

			default:
				continue
			}

			bar.Reset()
			bar.Write([]byte("|"))

			filled := currentProgress / maxProgress * width
			for i := 0.0; i < filled; i++ {
				bar.Write([]byte("█"))
			}
			for i := filled; i < width; i++ {
				bar.Write([]byte(" "))
			}
			bar.Write([]byte(fmt.Sprintf("| [%.2f%v | elapsed: %v]",
				currentProgress/maxProgress*100, "%",
				elapsedTime)))

			fmt.Printf("\n\033[1A\033[K%v", bar.String())
		}
	}()
}
