package events

import (
	"context"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

const sinkTimeout = 5 * time.Second

// Dispatcher hands events to an actor that forwards them to every sink in
// order. Emit returns immediately; the actor mailbox absorbs bursts.
type Dispatcher struct {
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

func NewDispatcher(logger *zap.Logger, sinks ...Sink) (*Dispatcher, error) {
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		return &dispatchActor{logger: logger.Named("event-actor"), sinks: sinks}
	})
	pid, err := system.Root.SpawnNamed(props, "event-dispatcher")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn event dispatcher: %w", err)
	}

	return &Dispatcher{system: system, pid: pid, logger: logger}, nil
}

func (d *Dispatcher) Emit(e Event) {
	d.system.Root.Send(d.pid, &e)
}

// Close stops the actor after the events already queued have been delivered.
func (d *Dispatcher) Close() {
	if err := d.system.Root.PoisonFuture(d.pid).Wait(); err != nil {
		d.logger.Warn("event dispatcher did not stop cleanly", zap.Error(err))
	}
	d.system.Shutdown()
}

type dispatchActor struct {
	logger *zap.Logger
	sinks  []Sink
}

func (a *dispatchActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *Event:
		for _, sink := range a.sinks {
			a.deliver(sink, *msg)
		}

	case *actor.Started:
		a.logger.Info("Event dispatcher started", zap.Int("sinks", len(a.sinks)))

	case *actor.Stopped:
		a.logger.Info("Event dispatcher stopped")
	}
}

func (a *dispatchActor) deliver(sink Sink, e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := sink.Handle(ctx, e); err != nil {
		a.logger.Error("Failed to deliver event",
			zap.String("sink", fmt.Sprintf("%T", sink)),
			zap.String("type", e.Type),
			zap.String("entity_id", e.EntityID),
			zap.Error(err))
	}
}
