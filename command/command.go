// Package command implements the semicolon-separated action language the
// language model answers with, e.g. "fly; delay(0.5); fire(3)".
package command

import (
	"fmt"
	"strconv"
)

// Kind identifies a registered command.
type Kind int

const (
	KindPress Kind = iota + 1
	KindRightClick
	KindFly
	KindMelee
	KindFire
	KindDelay
	KindNano
	KindLock
	KindMessage
	KindStartRecording
	KindStopRecording
	KindStartReplay
	KindStopReplay
	KindClip
	KindShutdown
)

// Argument ranges. Values outside them are clamped, never rejected.
const (
	MaxMelee = 10
	MaxFire  = 6
	MaxDelay = 10.0
	MaxNano  = 8.0
)

type argShape int

const (
	argNone    argShape = iota // bare keyword
	argKey                     // press(key)
	argCount                   // integer count
	argSeconds                 // float seconds
	argMessage                 // text, bool
)

type entry struct {
	name  string
	shape argShape
	max   float64
}

// table is the dispatch table. Names are matched against whole tokens.
var table = map[Kind]entry{
	KindPress:          {"press", argKey, 0},
	KindRightClick:     {"rmb", argNone, 0},
	KindFly:            {"fly", argNone, 0},
	KindMelee:          {"melee", argCount, MaxMelee},
	KindFire:           {"fire", argCount, MaxFire},
	KindDelay:          {"delay", argSeconds, MaxDelay},
	KindNano:           {"nano", argSeconds, MaxNano},
	KindLock:           {"lock", argNone, 0},
	KindMessage:        {"message", argMessage, 0},
	KindStartRecording: {"start_rec", argNone, 0},
	KindStopRecording:  {"stop_rec", argNone, 0},
	KindStartReplay:    {"start_replay", argNone, 0},
	KindStopReplay:     {"stop_replay", argNone, 0},
	KindClip:           {"clip", argNone, 0},
	KindShutdown:       {"shutdown", argNone, 0},
}

var byName = func() map[string]Kind {
	m := make(map[string]Kind, len(table))
	for k, s := range table {
		m[s.name] = k
	}
	return m
}()

// Lookup returns the kind registered under name.
func Lookup(name string) (Kind, bool) {
	k, ok := byName[name]
	return k, ok
}

// String returns the command name as written in the language.
func (k Kind) String() string {
	if s, ok := table[k]; ok {
		return s.name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// TakesArgs reports whether the kind is written as a call.
func (k Kind) TakesArgs() bool {
	return table[k].shape != argNone
}

// Command is one validated token with its arguments already clamped.
// Only the fields relevant to Kind are set.
type Command struct {
	Kind Kind

	Key     string  // press
	Count   int     // melee, fire
	Seconds float64 // delay, nano
	Text    string  // message
	Team    bool    // message
}

// String renders the canonical token.
func (c Command) String() string {
	switch table[c.Kind].shape {
	case argKey:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Key)
	case argCount:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Count)
	case argSeconds:
		return fmt.Sprintf("%s(%s)", c.Kind, strconv.FormatFloat(c.Seconds, 'f', -1, 64))
	case argMessage:
		return fmt.Sprintf("%s(%s, %t)", c.Kind, c.Text, c.Team)
	default:
		return c.Kind.String()
	}
}
