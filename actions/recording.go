package actions

import (
	"context"
)

// Spoken when a recording command fails.
const (
	msgStartRecordingFailed = "Failed to start recording"
	msgStopRecordingFailed  = "Failed to stop recording"
	msgStartReplayFailed    = "Failed to start replay buffer"
	msgStopReplayFailed     = "Failed to stop replay buffer"
	msgSaveClipFailed       = "Failed to save clip"
)

// StartRecording starts a recording in the recording tool.
func (e *Executor) StartRecording(ctx context.Context) error {
	return e.record(ctx, "start recording", msgStartRecordingFailed, Recorder.StartRecording)
}

// StopRecording stops the current recording.
func (e *Executor) StopRecording(ctx context.Context) error {
	return e.record(ctx, "stop recording", msgStopRecordingFailed, Recorder.StopRecording)
}

// StartReplay starts the replay buffer.
func (e *Executor) StartReplay(ctx context.Context) error {
	return e.record(ctx, "start replay buffer", msgStartReplayFailed, Recorder.StartReplayBuffer)
}

// StopReplay stops the replay buffer.
func (e *Executor) StopReplay(ctx context.Context) error {
	return e.record(ctx, "stop replay buffer", msgStopReplayFailed, Recorder.StopReplayBuffer)
}

// SaveClip saves the replay buffer to disk.
func (e *Executor) SaveClip(ctx context.Context) error {
	return e.record(ctx, "save clip", msgSaveClipFailed, Recorder.SaveReplayBuffer)
}

// record runs a recording tool call. Failures are logged and announced but
// never returned, so a flaky recorder does not show up as a failed task.
func (e *Executor) record(ctx context.Context, op, failMsg string, call func(Recorder, context.Context) error) error {
	if e.recorder == nil {
		e.logger.Info("recording tool not connected", "op", op)
		return nil
	}
	if err := call(e.recorder, ctx); err != nil {
		e.logger.Error(op, "error", err)
		e.announce(ctx, failMsg)
		return nil
	}
	e.logger.Info("recording tool", "op", op)
	return nil
}

func (e *Executor) announce(ctx context.Context, text string) {
	if e.speaker == nil {
		return
	}
	if err := e.speaker.Speak(ctx, text); err != nil {
		e.logger.Warn("speak", "text", text, "error", err)
	}
}

// Shutdown waits for trailing speech to finish, then stops the process.
func (e *Executor) Shutdown(ctx context.Context) error {
	waitErr := e.sleep(ctx, e.grace)
	e.state.Stop()
	e.logger.Info("shutdown requested")
	return waitErr
}
