package anim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rent-preview/internal/config"
	"rent-preview/internal/logging"
	"rent-preview/internal/transform"
)

// Driver animates the live values of a transform.State toward targets.
// A new target on a channel replaces the in-flight one, keeping the current
// velocity; there is no queue. Lock order is Driver then State.
type Driver struct {
	mu sync.Mutex

	state   *transform.State
	params  config.SpringConfig
	springs [4]Spring
	active  transform.Channels
	stopped bool
}

// NewDriver returns a driver writing to state.
func NewDriver(state *transform.State, params config.SpringConfig) *Driver {
	return &Driver{state: state, params: params}
}

// SetParams replaces the spring parameters. In-flight animations continue
// with the new parameters.
func (d *Driver) SetParams(params config.SpringConfig) {
	d.mu.Lock()
	d.params = params
	d.mu.Unlock()
}

// Animate starts springs on the given channels toward target.
func (d *Driver) Animate(cs transform.Channels, target transform.Values) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	live := d.state.Live()
	cs.Each(func(c transform.Channel) {
		sp := &d.springs[c]
		if !d.active.Has(c) {
			sp.Position = live.Get(c)
			sp.Velocity = 0
		}
		sp.Target = target.Get(c)
	})
	d.active |= cs
}

// Cancel stops the animation of the given channels where they are. Live
// gesture updates call this before writing.
func (d *Driver) Cancel(cs transform.Channels) {
	d.mu.Lock()
	d.active &^= cs
	d.mu.Unlock()
}

// Stop cancels every animation and ignores later Animate calls.
func (d *Driver) Stop() {
	d.mu.Lock()
	d.active = 0
	d.stopped = true
	d.mu.Unlock()
}

// Active returns the channels currently animating.
func (d *Driver) Active() transform.Channels {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Target returns the target of a channel and whether it is animating.
func (d *Driver) Target(c transform.Channel) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.springs[c].Target, d.active.Has(c)
}

// Step advances every active spring by dt and writes the result to the
// state. It reports whether any channel is still moving.
func (d *Driver) Step(dt time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == 0 {
		return false
	}

	omega := d.params.AngularFrequency()
	var next transform.Values
	written := d.active
	d.active.Each(func(c transform.Channel) {
		sp := &d.springs[c]
		sp.Step(dt, omega)
		if sp.AtRest(d.params) {
			sp.Position = sp.Target
			sp.Velocity = 0
			d.active &^= 1 << c
		}
		next.Set(c, sp.Position)
	})
	d.state.SetLive(written, next)
	return d.active != 0
}

// Settle jumps every active channel to its target.
func (d *Driver) Settle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	var next transform.Values
	written := d.active
	d.active.Each(func(c transform.Channel) {
		sp := &d.springs[c]
		sp.Position = sp.Target
		sp.Velocity = 0
		next.Set(c, sp.Target)
	})
	d.active = 0
	d.state.SetLive(written, next)
}

// Run steps the driver on a ticker until ctx is done. onFrame, if not nil,
// is called after every frame that moved a channel.
func (d *Driver) Run(ctx context.Context, interval time.Duration, onFrame func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			logging.Logger().Debug("animation loop stopped", slog.Any("reason", ctx.Err()))
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if d.Active() == 0 {
				continue
			}
			d.Step(dt)
			if onFrame != nil {
				onFrame()
			}
		}
	}
}
