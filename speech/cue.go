package speech

import "github.com/gen2brain/beeep"

// Cue plays a short system beep, used to signal that listening started.
func Cue() error {
	return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}
