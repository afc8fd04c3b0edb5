// Package types provides shared type definitions for the application.
package types

import "strings"

// ChatMode is the in-game audience a typed message goes to.
type ChatMode uint32

const (
	ChatTeam ChatMode = iota
	ChatMatch
)

// String returns the lower-case mode name.
func (m ChatMode) String() string {
	switch m {
	case ChatTeam:
		return "team"
	case ChatMatch:
		return "match"
	default:
		return "unknown"
	}
}

// ChatModeFor maps the isTeam flag of a message command to a mode.
func ChatModeFor(isTeam bool) ChatMode {
	if isTeam {
		return ChatTeam
	}
	return ChatMatch
}

// Usage represents token usage statistics from LLM API calls.
type Usage struct {
	PromptTokens     int  `json:"promptTokens"`
	CompletionTokens int  `json:"completionTokens"`
	TotalTokens      int  `json:"totalTokens"`
	CacheHit         bool `json:"cacheHit"`
}

// Reply is a completion split into the part to speak and the part to execute.
type Reply struct {
	Spoken  string `json:"spoken"`
	Command string `json:"command"`
}

// HasCommand reports whether the reply carries a command string.
func (r Reply) HasCommand() bool {
	return strings.TrimSpace(r.Command) != ""
}

// Rect is a screen rectangle in absolute pixels.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Sub returns the sub-rectangle spanned by the given fractions of r.
// Fractions are relative to the rectangle's width and height.
func (r Rect) Sub(x0, y0, x1, y1 float64) Rect {
	left := r.X + int(float64(r.W)*x0)
	top := r.Y + int(float64(r.H)*y0)
	right := r.X + int(float64(r.W)*x1)
	bottom := r.Y + int(float64(r.H)*y1)
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// Status is a snapshot of the agent for logs and the CLI.
type Status struct {
	Running         bool   `json:"running"`
	Listening       bool   `json:"listening"`
	ChatMode        string `json:"chatMode"`
	SimulatingInput bool   `json:"simulatingInput"`
	UltReady        bool   `json:"ultReady"`
	QueueLen        int    `json:"queueLen"`
}
