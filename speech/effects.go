package speech

import (
	"math"
	"time"
)

// Effects describes the Ultron voice character applied to synthesized
// speech before playback.
type Effects struct {
	PitchMult  float64       // <1 lowers pitch and slows speech
	OutRate    int           // playback sample rate
	EchoDelay  time.Duration // zero disables the echo
	EchoGainDB float64       // echo level relative to the dry signal
	GainDB     float64       // overall gain
}

// DefaultEffects returns the stock Ultron voice.
func DefaultEffects() Effects {
	return Effects{
		PitchMult:  0.96,
		OutRate:    44100,
		EchoDelay:  60 * time.Millisecond,
		EchoGainDB: -8,
		GainDB:     2,
	}
}

// Apply returns the processed samples and their sample rate. The output
// has the same duration as the pitched signal; the echo tail is cut.
func (e Effects) Apply(samples []int16, rate int) ([]int16, int) {
	if len(samples) == 0 || rate <= 0 {
		return samples, rate
	}

	pitch := e.PitchMult
	if pitch <= 0 {
		pitch = 1
	}
	outRate := e.OutRate
	if outRate <= 0 {
		outRate = rate
	}

	// Replaying at rate*pitch then converting to outRate is a single
	// resample by outRate / (rate*pitch).
	dry := resample(samples, float64(rate)*pitch, float64(outRate))

	out := make([]float64, len(dry))
	copy(out, dry)

	if delay := int(e.EchoDelay.Seconds() * float64(outRate)); e.EchoDelay > 0 && delay < len(dry) {
		g := dbToLinear(e.EchoGainDB)
		for i := delay; i < len(out); i++ {
			out[i] += g * dry[i-delay]
		}
	}

	g := dbToLinear(e.GainDB)
	res := make([]int16, len(out))
	for i, v := range out {
		res[i] = clip(v * g)
	}
	return res, outRate
}

// resample converts between rates by linear interpolation.
func resample(in []int16, from, to float64) []float64 {
	n := int(float64(len(in)) * to / from)
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	step := from / to
	last := len(in) - 1
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = float64(in[last])
			continue
		}
		frac := pos - float64(j)
		out[i] = float64(in[j])*(1-frac) + float64(in[j+1])*frac
	}
	return out
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

func clip(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(math.Round(v))
	}
}
