package actions

import (
	"context"

	"github.com/Brooklyn-Dev/Ultron-AI/command"
	"github.com/Brooklyn-Dev/Ultron-AI/taskqueue"
)

// Bind turns a validated command into a queue task that runs on e.
func (e *Executor) Bind(c command.Command) taskqueue.Task {
	return taskqueue.Task{Name: c.String(), Run: e.runner(c)}
}

func (e *Executor) runner(c command.Command) func(context.Context) error {
	switch c.Kind {
	case command.KindPress:
		return func(ctx context.Context) error { return e.Press(ctx, c.Key) }
	case command.KindRightClick:
		return e.RightClick
	case command.KindFly:
		return e.Fly
	case command.KindMelee:
		return func(ctx context.Context) error { return e.Melee(ctx, c.Count) }
	case command.KindFire:
		return func(ctx context.Context) error { return e.Fire(ctx, c.Count) }
	case command.KindDelay:
		return func(ctx context.Context) error { return e.Delay(ctx, seconds(c.Seconds)) }
	case command.KindNano:
		return func(ctx context.Context) error { return e.Nano(ctx, seconds(c.Seconds)) }
	case command.KindLock:
		return e.Lock
	case command.KindMessage:
		return func(ctx context.Context) error { return e.Chat(ctx, c.Text, c.Team) }
	case command.KindStartRecording:
		return e.StartRecording
	case command.KindStopRecording:
		return e.StopRecording
	case command.KindStartReplay:
		return e.StartReplay
	case command.KindStopReplay:
		return e.StopReplay
	case command.KindClip:
		return e.SaveClip
	case command.KindShutdown:
		return e.Shutdown
	default:
		// nil body; the worker reports it as a failed task.
		return nil
	}
}
