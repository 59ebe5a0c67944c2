// Package tui renders a live status screen for a fuzzing run.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/mkrein/sigfuzz/internal/fuzz"
)

const refreshInterval = 500 * time.Millisecond

// UI displays the shared counters of a running fuzzing engine.
type UI struct {
	app   *tview.Application
	view  *tview.TextView
	fctx  *fuzz.Context
	start time.Time
	stop  context.CancelFunc
}

// New constructs a status screen over the provided engine context.
func New(fctx *fuzz.Context) *UI {
	view := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	view.SetBorder(true).SetTitle(" sigfuzz ")

	app := tview.NewApplication().SetRoot(view, true)

	u := &UI{
		app:   app,
		view:  view,
		fctx:  fctx,
		start: time.Now(),
	}

	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			if u.stop != nil {
				u.stop()
			}
			return nil
		}
		return event
	})

	return u
}

// Run drives the screen until ctx is cancelled or the user quits. Quitting
// the screen cancels the returned context's parent via the cancel wired by
// the caller; Run itself only reports display errors.
func (u *UI) Run(ctx context.Context, cancel context.CancelFunc) error {
	u.stop = cancel

	ctx, innerCancel := context.WithCancel(ctx)
	defer innerCancel()

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				u.app.QueueUpdateDraw(func() {})
				u.app.Stop()
				return
			case <-ticker.C:
				u.app.QueueUpdateDraw(u.refresh)
			}
		}
	}()

	u.refresh()
	return u.app.Run()
}

func (u *UI) refresh() {
	elapsed := time.Since(u.start).Round(time.Second)
	runs := u.fctx.TotalRuns()

	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(runs) / secs
	}

	mode := "fuzzing"
	if u.fctx.ReplayMode() {
		mode = "replay"
	}

	u.view.SetText(fmt.Sprintf(
		"[yellow]mode[-]           %s\n"+
			"[yellow]elapsed[-]        %s\n"+
			"[yellow]runs[-]           %d\n"+
			"[yellow]runs/sec[-]       %.1f\n"+
			"[yellow]crashes[-]        %d\n"+
			"[yellow]unique crashes[-] %d\n\n"+
			"press q to stop",
		mode,
		elapsed,
		runs,
		rate,
		u.fctx.TotalCrashes(),
		u.fctx.UniqueCrashes(),
	))
}
