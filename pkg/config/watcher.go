package config

import (
	"context"
	"reflect"
	"sync"
	"time"

	"contractor-verify/pkg/metrics"
)

// Change describes a configuration update event.
// Only a subset of fields may have changed; see Fields for the list of keys.
type Change struct {
	Old    *Config
	New    *Config
	Fields []string
	Err    error
}

// Subscriber channel buffer size; small to apply back-pressure if receivers are slow.
const subBuf = 4

// Watcher periodically reloads configuration from the environment and
// notifies subscribers when values change. Polling keeps it simple; the
// process env is the single source of truth.
type Watcher struct {
	mu     sync.RWMutex
	cur    *Config
	closed bool
	intv   time.Duration
	subs   []chan Change
	cancel context.CancelFunc

	mReloads  *metrics.Counter
	mFailures *metrics.Counter
}

func NewWatcher(interval time.Duration) *Watcher {
	w := &Watcher{
		intv:      interval,
		mReloads:  metrics.Default.Counter("config_reload_total", "Total number of config reload attempts"),
		mFailures: metrics.Default.Counter("config_reload_failures_total", "Total number of failed config reloads"),
	}
	w.cur = Load()
	return w
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Subscribe returns a channel receiving Change notifications.
// Caller should drain the channel until it is closed.
func (w *Watcher) Subscribe() <-chan Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan Change, subBuf)
	w.subs = append(w.subs, ch)
	return ch
}

// Start begins the polling loop.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	go func() {
		ticker := time.NewTicker(w.intv)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.reload()
			}
		}
	}()
}

// Close stops the watcher and closes subscriber channels.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	subs := w.subs
	w.subs = nil
	w.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}

func (w *Watcher) reload() {
	w.mReloads.Inc(1)
	next := Load()
	if err := Validate(next); err != nil {
		w.mFailures.Inc(1)
		w.notify(Change{Old: w.Current(), Err: err})
		return
	}

	old := w.Current()
	fields := diffFields(old, next)
	if len(fields) == 0 {
		return
	}

	w.mu.Lock()
	w.cur = next
	w.mu.Unlock()

	w.notify(Change{Old: old, New: next, Fields: fields})
}

func (w *Watcher) notify(chg Change) {
	w.mu.RLock()
	subs := w.subs
	w.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- chg:
		default:
			// subscriber is behind; drop rather than block the loop
		}
	}
}

// diffFields reports the names of struct fields that differ between two configs.
func diffFields(a, b *Config) []string {
	var fields []string
	va := reflect.ValueOf(*a)
	vb := reflect.ValueOf(*b)
	t := va.Type()
	for i := 0; i < t.NumField(); i++ {
		if !reflect.DeepEqual(va.Field(i).Interface(), vb.Field(i).Interface()) {
			fields = append(fields, t.Field(i).Name)
		}
	}
	return fields
}
