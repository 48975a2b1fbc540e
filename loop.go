package autoresearch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Phase is a state of the research control loop.
type Phase int

const (
	PhasePlanning Phase = iota
	PhaseSearching
	PhaseReflecting
	PhaseSynthesizing
	PhaseTerminal
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhasePlanning:
		return "planning"
	case PhaseSearching:
		return "searching"
	case PhaseReflecting:
		return "reflecting"
	case PhaseSynthesizing:
		return "synthesizing"
	case PhaseTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// next is the transition function of the loop. Reflecting is the only phase
// with two successors.
func next(p Phase, s State) Phase {
	switch p {
	case PhasePlanning:
		return PhaseSearching
	case PhaseSearching:
		return PhaseReflecting
	case PhaseReflecting:
		if !s.ReflectionSufficient {
			return PhaseSearching
		}
		return PhaseSynthesizing
	default:
		return PhaseTerminal
	}
}

// UnexpectedErrorMessage is emitted when a step fails in a way no step handles.
const UnexpectedErrorMessage = "Research run failed unexpectedly. Please try again."

// Outcome is the result of a completed or interrupted run.
type Outcome struct {
	RunID string
	State State

	// Queries are the queries produced by the planning step.
	Queries []string

	// HistoryID is set when the run was stored by the Archiver.
	HistoryID int64
}

// Run researches topic and delivers progress events to handler in order. The
// last delivered event is always EventDone. If ctx is cancelled or handler
// returns an error, Run stops at once, emits nothing further, stores nothing
// and returns an error tagged with ErrTagDisconnected.
func (x *Agent) Run(ctx context.Context, topic string, handler EventHandler) (*Outcome, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, goerr.Wrap(ErrEmptyTopic, "can not start research")
	}
	if handler == nil {
		handler = DiscardEvents
	}

	runID := uuid.NewString()
	logger := x.logger
	if logger == nil {
		logger = ctxlog.From(ctx)
	}
	logger = logger.With(slog.String("run_id", runID))
	ctx = ctxlog.With(ctx, logger)

	ctx, span := x.tracer.Start(ctx, "research")
	defer span.End()
	span.SetAttributes(attribute.String("research.run_id", runID))

	logger.Info("research started", slog.String("topic", topic))

	outcome := &Outcome{
		RunID: runID,
		State: NewState(topic),
	}

	emit := func(d Delta, phase Phase) error {
		for _, ev := range d.Events {
			if err := ctx.Err(); err != nil {
				return goerr.Wrap(ErrDisconnected, "context closed", goerr.V("phase", phase.String()), goerr.V("cause", err.Error()))
			}
			if err := handler(ctx, ev); err != nil {
				return goerr.Wrap(ErrDisconnected, "event handler failed", goerr.V("phase", phase.String()), goerr.V("cause", err.Error()))
			}
		}
		return nil
	}

	phase := PhasePlanning
	for phase != PhaseTerminal {
		delta, err := x.step(ctx, phase, outcome.State)
		if err != nil {
			logger.Error("step failed", slog.String("phase", phase.String()), slog.Any("error", err))
			span.RecordError(err)
			delta = Delta{Events: []Event{newEvent(EventError, UnexpectedErrorMessage)}}
			phase = PhaseTerminal
		}

		if err := emit(delta, phase); err != nil {
			logger.Info("consumer disconnected", slog.Any("error", err))
			span.SetStatus(codes.Error, "disconnected")
			return outcome, err
		}
		outcome.State = outcome.State.Merge(delta)

		if phase == PhasePlanning {
			outcome.Queries = slices.Clone(outcome.State.PlannedQueries)
		}
		if phase != PhaseTerminal {
			phase = next(phase, outcome.State)
		}
	}

	done := Delta{Events: []Event{newEvent(EventDone, "")}}
	if err := emit(done, PhaseTerminal); err != nil {
		logger.Info("consumer disconnected before done", slog.Any("error", err))
		return outcome, err
	}
	outcome.State = outcome.State.Merge(done)

	x.archive(ctx, outcome)

	logger.Info("research finished",
		slog.Int("iterations", outcome.State.IterationCount),
		slog.Int("results", len(outcome.State.SearchResults)),
		slog.Bool("report", outcome.State.FinalReport != ""),
	)
	return outcome, nil
}

// step runs the step function of phase inside its own span. A panic in the
// step is turned into an error.
func (x *Agent) step(ctx context.Context, phase Phase, s State) (d Delta, err error) {
	ctx, span := x.tracer.Start(ctx, "research."+phase.String())
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("panic in research step", goerr.V("phase", phase.String()), goerr.V("panic", fmt.Sprint(r)))
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
		}
	}()

	switch phase {
	case PhasePlanning:
		d = x.plan(ctx, s)
	case PhaseSearching:
		d = x.search(ctx, s)
	case PhaseReflecting:
		d = x.reflect(ctx, s)
	case PhaseSynthesizing:
		d = x.synthesize(ctx, s)
	default:
		return Delta{}, goerr.Wrap(ErrInvalidParameter, "no step for phase", goerr.V("phase", phase.String()))
	}

	span.SetAttributes(attribute.Int("research.events", len(d.Events)))
	return d, nil
}

func (x *Agent) archive(ctx context.Context, outcome *Outcome) {
	if x.archiver == nil || outcome.State.FinalReport == "" {
		return
	}

	id, err := x.archiver.Save(ctx, Run{
		Topic:   outcome.State.Topic,
		Report:  outcome.State.FinalReport,
		Queries: outcome.Queries,
	})
	if err != nil {
		ctxlog.From(ctx).Error("failed to save research run", slog.Any("error", err))
		return
	}
	outcome.HistoryID = id
}
