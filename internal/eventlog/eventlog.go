package eventlog

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

const subscriberBuffer = 64

// Log is the append-only execution event log. Events are never mutated or
// deleted; concurrent writers only ever append, so readers need no
// coordination beyond the lock. Aggregators fold over it and can always be
// rebuilt from scratch.
type Log struct {
	mu      sync.RWMutex
	events  []model.ExecutionEvent
	subs    map[string]map[int]chan model.ExecutionEvent
	nextSub int
}

func New() *Log {
	return &Log{
		subs: make(map[string]map[int]chan model.ExecutionEvent),
	}
}

// Append records one event and notifies subscribers for its scan. A slow
// subscriber misses the push but loses nothing: ForScan always replays the
// full sequence.
func (l *Log) Append(ev model.ExecutionEvent) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	l.events = append(l.events, ev)
	var targets []chan model.ExecutionEvent
	for _, ch := range l.subs[ev.ScanID] {
		targets = append(targets, ch)
	}
	l.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- ev:
		default:
			log.Printf("[eventlog] dropping push for scan %s: subscriber not keeping up", ev.ScanID)
		}
	}
}

// ForScan returns all events for a scan ordered by creation time.
func (l *Log) ForScan(scanID string) []model.ExecutionEvent {
	l.mu.RLock()
	var out []model.ExecutionEvent
	for _, ev := range l.events {
		if ev.ScanID == scanID {
			out = append(out, ev)
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Since returns all events created at or after the cutoff, across scans.
func (l *Log) Since(cutoff time.Time) []model.ExecutionEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.ExecutionEvent
	for _, ev := range l.events {
		if !ev.CreatedAt.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out
}

// Len reports the number of events appended so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Subscribe delivers each newly appended event for scanID on the returned
// channel until the cancel function is called.
func (l *Log) Subscribe(scanID string) (<-chan model.ExecutionEvent, func()) {
	ch := make(chan model.ExecutionEvent, subscriberBuffer)

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	if l.subs[scanID] == nil {
		l.subs[scanID] = make(map[int]chan model.ExecutionEvent)
	}
	l.subs[scanID][id] = ch
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if subs, ok := l.subs[scanID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(l.subs, scanID)
			}
		}
		l.mu.Unlock()
	}
	return ch, cancel
}
