package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kvnav/kvnav/internal/bus"
	"github.com/kvnav/kvnav/internal/store"
)

// fakeAdapter is an in-memory store.Adapter with deterministic per-key
// values, used to exercise the worker without a real datastore.
type fakeAdapter struct {
	values map[string]store.Value
	ttls   map[string]int64
	failOn map[string]bool
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		values: map[string]store.Value{},
		ttls:   map[string]int64{},
		failOn: map[string]bool{},
	}
}

func (f *fakeAdapter) Enumerate(ctx context.Context, pattern string) ([]store.KeyType, error) {
	var out []store.KeyType
	for k, v := range f.values {
		out = append(out, store.KeyType{Key: store.Key(k), Type: v.Type})
	}
	return out, nil
}

func (f *fakeAdapter) ProbeType(ctx context.Context, key store.Key) (store.DataType, error) {
	return f.values[key.String()].Type, nil
}

func (f *fakeAdapter) Fetch(ctx context.Context, key store.Key) (store.Value, error) {
	if f.failOn[key.String()] {
		return store.Value{}, errors.New("boom")
	}
	return f.values[key.String()], nil
}

func (f *fakeAdapter) TTL(ctx context.Context, key store.Key) (int64, error) {
	ttl, ok := f.ttls[key.String()]
	if !ok {
		return -2, nil
	}
	return ttl, nil
}

func (f *fakeAdapter) WriteString(ctx context.Context, key store.Key, value []byte) error {
	f.values[key.String()] = store.Value{Type: store.TypeString, Str: value}
	return nil
}

func (f *fakeAdapter) Delete(ctx context.Context, key store.Key) error {
	delete(f.values, key.String())
	return nil
}

var _ store.Adapter = (*fakeAdapter)(nil)

// TestRun_P11_FIFOOrdering issues two Fetch commands serially and checks
// that their ValueLoaded replies arrive in the same order, per spec P11.
func TestRun_P11_FIFOOrdering(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.values["k1"] = store.Value{Type: store.TypeString, Str: []byte("v1")}
	adapter.values["k2"] = store.Value{Type: store.TypeString, Str: []byte("v2")}
	adapter.ttls["k1"] = -1
	adapter.ttls["k2"] = -1

	b := bus.New(8)
	go Run(context.Background(), adapter, b)

	b.Commands <- bus.Fetch{Key: store.Key("k1")}
	b.Commands <- bus.Fetch{Key: store.Key("k2")}

	first := mustRecv(t, b.Events)
	second := mustRecv(t, b.Events)
	b.Close()

	v1, ok := first.(bus.ValueLoaded)
	if !ok || v1.Key.String() != "k1" {
		t.Fatalf("first reply = %#v, want ValueLoaded{Key: k1}", first)
	}
	v2, ok := second.(bus.ValueLoaded)
	if !ok || v2.Key.String() != "k2" {
		t.Fatalf("second reply = %#v, want ValueLoaded{Key: k2}", second)
	}
}

func TestRun_FetchError_EmitsFailure(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.failOn["bad"] = true

	b := bus.New(4)
	go Run(context.Background(), adapter, b)

	b.Commands <- bus.Fetch{Key: store.Key("bad")}
	ev := mustRecv(t, b.Events)
	b.Close()

	if _, ok := ev.(bus.Failure); !ok {
		t.Fatalf("got %#v, want bus.Failure", ev)
	}
}

func TestRun_DeleteOk(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.values["k"] = store.Value{Type: store.TypeString, Str: []byte("v")}

	b := bus.New(4)
	go Run(context.Background(), adapter, b)

	b.Commands <- bus.Delete{Key: store.Key("k")}
	ev := mustRecv(t, b.Events)
	b.Close()

	if d, ok := ev.(bus.DeleteOk); !ok || d.Key.String() != "k" {
		t.Fatalf("got %#v, want bus.DeleteOk{k}", ev)
	}
}

func mustRecv(t *testing.T, events chan bus.Event) bus.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}
