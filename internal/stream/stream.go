package stream

import "context"

// Op names a store mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one record-store mutation.
type Event struct {
	Op       Op
	RecordID string
}

// Feed is a bounded in-process change feed. Consumers that fall behind do
// not block publishers; events are dropped instead.
type Feed struct {
	ch chan Event
}

// New creates a feed with the given buffer size.
func New(size int) *Feed {
	return &Feed{ch: make(chan Event, size)}
}

// Publish enqueues an event, dropping it when the buffer is full.
func (f *Feed) Publish(evt Event) bool {
	if f == nil {
		return false
	}
	select {
	case f.ch <- evt:
		return true
	default:
		return false
	}
}

// Events exposes the buffered channel directly for synchronous consumers.
func (f *Feed) Events() <-chan Event { return f.ch }

// Consume returns a channel delivering events until ctx is done.
func (f *Feed) Consume(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case evt := <-f.ch:
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
