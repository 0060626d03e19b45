package app

import (
	"context"
	"sync"
)

// EventKind is the closed set of event kinds carried by a response stream.
type EventKind string

const (
	EventStatus EventKind = "status" // transient phase updates, latest wins
	EventStep   EventKind = "step"   // persistent, reconciled by step id
	EventSource EventKind = "source" // persistent, append-only
	EventText   EventKind = "text"   // answer tokens, concatenation order significant
	EventError  EventKind = "error"  // terminal generation failure
)

// Phase is the coarse status of the retrieval sub-pipeline. It moves
// retrieving -> (done | error) within one response and never regresses.
type Phase string

const (
	PhaseRetrieving Phase = "retrieving"
	PhaseDone       Phase = "done"
	PhaseError      Phase = "error"
)

type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepDone    StepStatus = "done"
	StepError   StepStatus = "error"
)

// PipelineStep is one stage of the pipeline as surfaced to the consumer.
// Steps mutate in place by ID; consumers reconcile, not append.
type PipelineStep struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Detail     string     `json:"detail,omitempty"`
	Status     StepStatus `json:"status"`
	Progress   int        `json:"progress"`
	StartedAt  int64      `json:"startedAt,omitempty"`  // epoch ms
	FinishedAt int64      `json:"finishedAt,omitempty"` // epoch ms
}

// Source is one retrieval hit surfaced as a citation-linkable event.
type Source struct {
	SourceID   string  `json:"sourceId"` // "source-{1-based index}"
	DocID      string  `json:"docId"`
	Title      string  `json:"title,omitempty"`
	URL        string  `json:"url,omitempty"`
	Snippet    string  `json:"snippet"`
	Similarity float64 `json:"similarity"`
}

// Event is the tagged union written to the response stream. Exactly one
// payload field is set, matching Kind.
type Event struct {
	Kind   EventKind     `json:"kind"`
	Phase  Phase         `json:"phase,omitempty"`
	Step   *PipelineStep `json:"step,omitempty"`
	Source *Source       `json:"source,omitempty"`
	Text   string        `json:"text,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Stream is the multiplexed event channel of a single response: one producer
// (the pipeline run), one consumer (the transport relay loop). Emission order
// is preserved across kinds.
type Stream struct {
	ch        chan Event
	closeOnce sync.Once
}

func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 64
	}
	return &Stream{ch: make(chan Event, buffer)}
}

// Emit enqueues an event, giving up when ctx is canceled.
func (s *Stream) Emit(ctx context.Context, ev Event) error {
	select {
	case s.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the consumer side. The channel closes when the producing
// run finishes.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.ch) })
}
