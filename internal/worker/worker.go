// Package worker runs the background task that owns the datastore
// connection: it consumes bus.Command values strictly serially and
// produces bus.Event replies, per spec §4.7/§5.
package worker

import (
	"context"

	log "github.com/golang/glog"

	"github.com/kvnav/kvnav/internal/bus"
	"github.com/kvnav/kvnav/internal/store"
)

// Run drains b.Commands until it is closed, dispatching each to adapter
// and publishing exactly one bus.Event per command onto b.Events. Run
// blocks, so callers start it in its own goroutine — it is the sole
// occupant of the "worker task" in the spec's two-task model.
//
// If b.Events is full, the corresponding send blocks: per spec §4.6, "the
// worker blocks until drained" rather than drop replies, since unlike
// Commands, Events carry replies the UI is specifically waiting on.
func Run(ctx context.Context, adapter store.Adapter, b *bus.Bus) {
	for cmd := range b.Commands {
		handle(ctx, adapter, cmd, b.Events)
	}
}

func handle(ctx context.Context, adapter store.Adapter, cmd bus.Command, events chan<- bus.Event) {
	switch c := cmd.(type) {
	case bus.Enumerate:
		keys, err := adapter.Enumerate(ctx, c.Pattern)
		if err != nil {
			log.Errorf("kvnav: enumerate %q failed: %v", c.Pattern, err)
			events <- bus.Failure{Message: err.Error()}
			return
		}
		events <- bus.KeysLoaded{Keys: keys}

	case bus.Fetch:
		value, err := adapter.Fetch(ctx, c.Key)
		if err != nil {
			log.Errorf("kvnav: fetch %q failed: %v", c.Key, err)
			events <- bus.Failure{Message: err.Error()}
			return
		}
		ttl, err := adapter.TTL(ctx, c.Key)
		if err != nil {
			log.Errorf("kvnav: ttl %q failed: %v", c.Key, err)
			events <- bus.Failure{Message: err.Error()}
			return
		}
		events <- bus.ValueLoaded{Key: c.Key, Value: value, TTL: ttl, Type: value.Type}

	case bus.WriteString:
		if err := adapter.WriteString(ctx, c.Key, c.Value); err != nil {
			log.Errorf("kvnav: write %q failed: %v", c.Key, err)
			events <- bus.Failure{Message: err.Error()}
			return
		}
		events <- bus.WriteOk{Key: c.Key}

	case bus.Delete:
		if err := adapter.Delete(ctx, c.Key); err != nil {
			log.Errorf("kvnav: delete %q failed: %v", c.Key, err)
			events <- bus.Failure{Message: err.Error()}
			return
		}
		events <- bus.DeleteOk{Key: c.Key}
	}
}
