// Package bus defines the two typed unidirectional channels that connect
// the UI task to the background worker task (spec §4.6), and their
// bounded construction.
package bus

import "github.com/kvnav/kvnav/internal/store"

// DefaultCapacity is the soft channel capacity used unless a caller
// chooses otherwise.
const DefaultCapacity = 100

// Command is a request sent from the UI task to the worker task.
type Command interface{ isCommand() }

type Enumerate struct{ Pattern string }
type Fetch struct{ Key store.Key }
type WriteString struct {
	Key   store.Key
	Value []byte
}
type Delete struct{ Key store.Key }

func (Enumerate) isCommand()   {}
func (Fetch) isCommand()       {}
func (WriteString) isCommand() {}
func (Delete) isCommand()      {}

// Event is a reply sent from the worker task back to the UI task.
type Event interface{ isEvent() }

type KeysLoaded struct{ Keys []store.KeyType }
type ValueLoaded struct {
	Key   store.Key
	Value store.Value
	TTL   int64
	Type  store.DataType
}
type WriteOk struct{ Key store.Key }
type DeleteOk struct{ Key store.Key }
type Failure struct{ Message string }

func (KeysLoaded) isEvent()  {}
func (ValueLoaded) isEvent() {}
func (WriteOk) isEvent()     {}
func (DeleteOk) isEvent()    {}
func (Failure) isEvent()     {}

// Bus is the pair of channels connecting the UI and worker tasks.
// Commands is consumed strictly serially by the worker, so replies on
// Events preserve the order commands were sent in (spec §4.6 Ordering).
type Bus struct {
	Commands chan Command
	Events   chan Event
}

// New builds a Bus with the given soft capacity on both channels.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		Commands: make(chan Command, capacity),
		Events:   make(chan Event, capacity),
	}
}

// TrySend attempts a non-blocking send on Commands, for callers that must
// degrade gracefully under backpressure (spec §4.6: Fetch-on-navigation
// uses try-send). It reports whether the command was enqueued.
func (b *Bus) TrySend(cmd Command) bool {
	select {
	case b.Commands <- cmd:
		return true
	default:
		return false
	}
}

// Close closes the Commands channel, which is how the UI task cancels the
// worker task (spec §5 Cancellation): the worker's receive loop ends when
// the channel closes.
func (b *Bus) Close() { close(b.Commands) }
