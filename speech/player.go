package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const playFrames = 1024

// PortAudio plays samples on the default output device. A stream is opened
// per utterance so the rate can follow the samples.
type PortAudio struct{}

func (PortAudio) Play(ctx context.Context, samples []int16, rate int) (err error) {
	if len(samples) == 0 {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	defer func() { err = errors.Join(err, portaudio.Terminate()) }()

	buf := make([]int16, playFrames)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(rate), len(buf), buf)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	defer func() { err = errors.Join(err, stream.Close()) }()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	defer func() { err = errors.Join(err, stream.Stop()) }()

	for off := 0; off < len(samples); off += len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := copy(buf, samples[off:])
		clear(buf[n:])
		if err := stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			return fmt.Errorf("write output stream: %w", err)
		}
	}
	return nil
}
