// Package watch follows a shared calendar over time and reports each day
// as it unlocks.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "valcal/internal/log"
	"valcal/internal/model"
	"valcal/internal/unlock"
)

// NotifyFunc is called once per newly unlocked day, in day order.
type NotifyFunc func(card model.DayCard)

// Options configures a Watcher.
type Options struct {
	// Spec is a standard 5-field cron expression, evaluated in Location.
	Spec string
	// Location is the zone the calendar unlocks in.
	Location *time.Location
	// Now replaces time.Now.
	Now func() time.Time
}

// Watcher re-evaluates the unlock set on a cron schedule and reports the
// days that became openable since the previous check.
type Watcher struct {
	engine   *unlock.Engine
	data     *model.CalendarData
	schedule cron.Schedule
	loc      *time.Location
	now      func() time.Time
	notify   NotifyFunc

	mu   sync.Mutex
	seen unlock.Set
}

// New validates the cron spec and returns a Watcher for data.
func New(engine *unlock.Engine, data *model.CalendarData, notify NotifyFunc, opts Options) (*Watcher, error) {
	if opts.Spec == "" {
		opts.Spec = "0 0 * * *"
	}
	sched, err := cron.ParseStandard(opts.Spec)
	if err != nil {
		return nil, fmt.Errorf("watch: invalid cron spec %q: %w", opts.Spec, err)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Watcher{
		engine:   engine,
		data:     data.Clone(),
		schedule: sched,
		loc:      opts.Location,
		now:      opts.Now,
		notify:   notify,
	}, nil
}

// Check computes the current unlock set and notifies for days not seen
// before. It returns the newly unlocked days.
func (w *Watcher) Check() []int {
	current := w.engine.ComputeFor(w.now(), w.data, unlock.ModeReceiver)

	w.mu.Lock()
	var fresh []int
	for _, day := range current.Days() {
		if !w.seen.Contains(day) {
			fresh = append(fresh, day)
		}
	}
	w.seen = current
	w.mu.Unlock()

	for _, day := range fresh {
		card, ok := w.data.Card(day)
		if !ok {
			continue
		}
		if w.notify != nil {
			w.notify(card)
		}
	}
	if len(fresh) > 0 {
		appLog.Info("days unlocked", "calendar", w.data.ID, "days", fresh, "total", current.Len())
	}
	return fresh
}

// Done reports whether every day has been seen unlocked.
func (w *Watcher) Done() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seen.Len() == model.DayCount
}

// Run checks immediately, then on every cron tick, until all days are
// unlocked or ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.Check()
	if w.Done() {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := cron.New(cron.WithLocation(w.loc))
	c.Schedule(w.schedule, cron.FuncJob(func() {
		w.Check()
		if w.Done() {
			cancel()
		}
	}))
	c.Start()

	if next, ok := w.engine.NextUnlock(w.now(), w.data.Timezone); ok {
		appLog.Info("watching calendar", "calendar", w.data.ID, "next_unlock", next.Format(time.RFC3339))
	}

	<-ctx.Done()
	<-c.Stop().Done()

	if w.Done() {
		return nil
	}
	return ctx.Err()
}
