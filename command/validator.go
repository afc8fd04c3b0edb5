package command

import (
	"log/slog"

	"github.com/Brooklyn-Dev/Ultron-AI/taskqueue"
)

// Binder turns a validated command into executable work.
type Binder interface {
	Bind(c Command) taskqueue.Task
}

// Submitter accepts tasks for later execution.
type Submitter interface {
	Submit(tasks ...taskqueue.Task) error
}

// Validator parses command strings and forwards each valid command to the
// queue as its own task. It performs no I/O other than logging.
type Validator struct {
	binder Binder
	queue  Submitter
	logger *slog.Logger
}

// NewValidator creates a validator that binds with b and submits to q.
func NewValidator(b Binder, q Submitter, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{binder: b, queue: q, logger: logger}
}

// Process parses s and submits one task per valid token, in order.
// It returns how many tasks were submitted.
func (v *Validator) Process(s string) int {
	cmds, diags := Parse(s)
	for _, d := range diags {
		v.logger.Warn("skipping command token", "index", d.Index, "token", d.Token, "error", d.Err)
	}

	submitted := 0
	for _, c := range cmds {
		if err := v.queue.Submit(v.binder.Bind(c)); err != nil {
			v.logger.Error("submit command", "command", c.String(), "error", err)
			continue
		}
		submitted++
	}

	v.logger.Debug("command string processed", "submitted", submitted, "skipped", len(diags))
	return submitted
}
