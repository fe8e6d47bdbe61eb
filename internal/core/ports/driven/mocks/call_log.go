package mocks

import "sync"

// CallLog records calls across several mocks so tests can assert their order
type CallLog struct {
	mu     sync.Mutex
	events []string
}

// NewCallLog creates an empty CallLog
func NewCallLog() *CallLog {
	return &CallLog{}
}

// Record appends an event. A nil log ignores the call.
func (l *CallLog) Record(event string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Events returns a copy of the recorded events
func (l *CallLog) Events() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// Count returns how many times event was recorded
func (l *CallLog) Count(event string) int {
	n := 0
	for _, e := range l.Events() {
		if e == event {
			n++
		}
	}
	return n
}

// Reset clears the log
func (l *CallLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}
