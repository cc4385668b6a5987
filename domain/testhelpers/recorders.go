package testhelpers

import (
	"context"
	"sync"
	"time"

	"casino/domain/interfaces"
	"casino/events"
)

// RecordingPublisher collects every published event. Safe for concurrent use.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far
func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

// OfType returns the published events of one type
func (p *RecordingPublisher) OfType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range p.Events() {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// BufferedPublisher is a minimal transactional publisher over a sink
type BufferedPublisher struct {
	sink    interfaces.EventPublisher
	pending []events.Event
}

// NewBufferedPublisherFactory returns a factory producing publishers that flush into sink
func NewBufferedPublisherFactory(sink interfaces.EventPublisher) func() interfaces.TransactionalEventPublisher {
	return func() interfaces.TransactionalEventPublisher {
		return &BufferedPublisher{sink: sink}
	}
}

func (p *BufferedPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *BufferedPublisher) Flush(ctx context.Context) error {
	for _, e := range p.pending {
		if err := p.sink.Publish(e); err != nil {
			return err
		}
	}
	p.pending = nil
	return nil
}

func (p *BufferedPublisher) Discard() {
	p.pending = nil
}

// RecordingObserver counts ledger signals. Safe for concurrent use.
type RecordingObserver struct {
	mu               sync.Mutex
	Conflicts        map[string]int
	Exhausted        map[string]int
	Finished         map[string]int
	FinishedWithErrs map[string]int
}

// NewRecordingObserver creates an empty observer
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{
		Conflicts:        map[string]int{},
		Exhausted:        map[string]int{},
		Finished:         map[string]int{},
		FinishedWithErrs: map[string]int{},
	}
}

func (o *RecordingObserver) VersionConflict(operation string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Conflicts[operation]++
}

func (o *RecordingObserver) RetriesExhausted(operation string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Exhausted[operation]++
}

func (o *RecordingObserver) OperationFinished(operation string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Finished[operation]++
	if err != nil {
		o.FinishedWithErrs[operation]++
	}
}

// ConflictCount returns the conflicts seen for an operation
func (o *RecordingObserver) ConflictCount(operation string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Conflicts[operation]
}

// ScriptedSource returns a fixed sequence of values, wrapping around. Each value
// is reduced modulo the requested bound.
type ScriptedSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewScriptedSource creates a source replaying values
func NewScriptedSource(values ...int) *ScriptedSource {
	return &ScriptedSource{values: values}
}

func (s *ScriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}
