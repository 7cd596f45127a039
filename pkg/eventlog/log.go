package eventlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"matchbook/pkg/engine"
)

// Entry is one emitted event stamped with its position in the engine's output.
type Entry struct {
	Seq   int64            `json:"seq"`
	Type  engine.EventType `json:"type"`
	At    time.Time        `json:"at"`
	Event engine.Event     `json:"event"`
}

// SequenceGapError is returned when a reader asks for entries that were already trimmed.
type SequenceGapError struct {
	Expected int64
	Received int64
}

func (e *SequenceGapError) Error() string {
	return fmt.Sprintf("event log sequence gap: expected %d got %d", e.Expected, e.Received)
}

// Log keeps the most recent events in memory. Capacity <= 0 keeps everything.
// Once a bounded log is full, entries is a ring and head is the slot of the oldest entry.
type Log struct {
	capacity int
	lastSeq  int64
	entries  []Entry
	head     int
	now      func() time.Time
	mu       sync.RWMutex
}

func New(capacity int) *Log {
	return &Log{
		capacity: capacity,
		now:      time.Now,
	}
}

// Name identifies the log as a dispatch sink.
func (l *Log) Name() string {
	return "eventlog"
}

// Deliver appends one event; it never fails.
func (l *Log) Deliver(_ context.Context, event engine.Event) error {
	l.Append(event)
	return nil
}

// Append stamps events with consecutive sequence numbers.
func (l *Log) Append(events ...engine.Event) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	appended := make([]Entry, 0, len(events))
	for _, event := range events {
		l.lastSeq++
		entry := Entry{
			Seq:   l.lastSeq,
			Type:  event.Type(),
			At:    l.now(),
			Event: event,
		}
		if l.capacity <= 0 || len(l.entries) < l.capacity {
			l.entries = append(l.entries, entry)
		} else {
			l.entries[l.head] = entry
			l.head = (l.head + 1) % l.capacity
		}
		appended = append(appended, entry)
	}

	return appended
}

func (l *Log) LastSeq() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.lastSeq
}

// Since returns entries with seq > since, up to limit (limit <= 0 means all).
func (l *Log) Since(since int64, limit int) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if since < 0 {
		since = 0
	}
	if len(l.entries) == 0 || since >= l.lastSeq {
		return []Entry{}, nil
	}

	first := l.at(0).Seq
	if since+1 < first {
		return nil, &SequenceGapError{Expected: since + 1, Received: first}
	}

	// sequences are consecutive, so the offset of since+1 is known
	start := int(since + 1 - first)
	end := len(l.entries)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	entries := make([]Entry, 0, end-start)
	for i := start; i < end; i++ {
		entries = append(entries, l.at(i))
	}
	return entries, nil
}

// at returns the i-th oldest retained entry.
func (l *Log) at(i int) Entry {
	return l.entries[(l.head+i)%len(l.entries)]
}
