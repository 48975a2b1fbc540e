package autoresearch

import "slices"

// Result is a single web search hit. URL is the deduplication key at synthesis time.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// State is the workflow record threaded through every step of a run. Steps
// receive it by value and never mutate it; they return a Delta instead.
type State struct {
	// Topic is fixed for the lifetime of a run.
	Topic string

	// PlannedQueries are queries waiting for the next search step.
	PlannedQueries []string

	// SearchResults is append-only across iterations.
	SearchResults []Result

	// IterationCount is incremented once per reflection step.
	IterationCount int

	ReflectionSufficient bool

	// FinalReport is empty until synthesis succeeds.
	FinalReport string

	// Events accumulates every event emitted so far, in order.
	Events []Event
}

// NewState returns the initial state of a run for topic.
func NewState(topic string) State {
	return State{
		Topic:          topic,
		PlannedQueries: []string{},
		SearchResults:  []Result{},
		Events:         []Event{},
	}
}

// Delta is a partial state update produced by a step. Nil pointer fields are
// left untouched by Merge. NewResults and Events are appended, everything else
// replaces the current value.
type Delta struct {
	PlannedQueries       *[]string
	NewResults           []Result
	IterationCount       *int
	ReflectionSufficient *bool
	FinalReport          *string
	Events               []Event
}

// Merge applies d to a copy of s and returns it. s itself is not modified.
func (s State) Merge(d Delta) State {
	next := s.clone()

	if d.PlannedQueries != nil {
		next.PlannedQueries = slices.Clone(*d.PlannedQueries)
		if next.PlannedQueries == nil {
			next.PlannedQueries = []string{}
		}
	}
	next.SearchResults = append(next.SearchResults, d.NewResults...)
	if d.IterationCount != nil {
		next.IterationCount = *d.IterationCount
	}
	if d.ReflectionSufficient != nil {
		next.ReflectionSufficient = *d.ReflectionSufficient
	}
	if d.FinalReport != nil {
		next.FinalReport = *d.FinalReport
	}
	next.Events = append(next.Events, d.Events...)

	return next
}

func (s State) clone() State {
	c := s
	c.PlannedQueries = slices.Clone(s.PlannedQueries)
	c.SearchResults = slices.Clone(s.SearchResults)
	c.Events = slices.Clone(s.Events)
	return c
}

func (d *Delta) emit(kind EventKind, content string) {
	d.Events = append(d.Events, newEvent(kind, content))
}

func ptr[T any](v T) *T {
	return &v
}
