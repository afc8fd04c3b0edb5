package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Separator splits tokens in a command string.
const Separator = ";"

// Parse errors reported in diagnostics.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingParen   = errors.New("missing closing parenthesis")
	ErrMissingArgs    = errors.New("missing arguments")
	ErrUnexpectedArgs = errors.New("command takes no arguments")
	ErrBadNumber      = errors.New("invalid number")
	ErrBadMessage     = errors.New("invalid message arguments")
)

// Diagnostic describes a token that was skipped.
type Diagnostic struct {
	Index int    // position of the token in the command string
	Token string // trimmed token text
	Err   error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("token %d %q: %v", d.Index, d.Token, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

var keyAliases = map[string]string{
	"shift_l": "lshift",
	"shift_r": "rshift",
	"ctrl":    "lctrl",
	"ctrl_l":  "lctrl",
	"ctrl_r":  "rctrl",
	"alt_l":   "lalt",
	"alt_r":   "ralt",
	"return":  "enter",
	"esc":     "escape",
}

// NormalizeKey lower-cases a key identifier and resolves common aliases.
func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}

// Parse splits s into commands, in source order. Tokens that do not parse
// are reported as diagnostics and do not affect the tokens around them.
// Empty tokens are ignored.
func Parse(s string) ([]Command, []Diagnostic) {
	var (
		cmds  []Command
		diags []Diagnostic
	)
	for i, tok := range strings.Split(s, Separator) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		c, err := ParseToken(tok)
		if err != nil {
			diags = append(diags, Diagnostic{Index: i, Token: tok, Err: err})
			continue
		}
		cmds = append(cmds, c)
	}
	return cmds, diags
}

// ParseToken parses a single trimmed token such as "fire(3)" or "fly".
func ParseToken(tok string) (Command, error) {
	name, args, hasCall, err := splitCall(tok)
	if err != nil {
		return Command{}, err
	}

	kind, ok := Lookup(name)
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	sp := table[kind]
	c := Command{Kind: kind}

	if sp.shape == argNone {
		if strings.TrimSpace(args) != "" {
			return Command{}, ErrUnexpectedArgs
		}
		return c, nil
	}
	if !hasCall || strings.TrimSpace(args) == "" {
		return Command{}, ErrMissingArgs
	}

	switch sp.shape {
	case argKey:
		c.Key = NormalizeKey(args)
	case argCount:
		// Atoi saturates on overflow, which the clamp absorbs.
		n, err := strconv.Atoi(strings.TrimSpace(args))
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Command{}, fmt.Errorf("%w: %q", ErrBadNumber, args)
		}
		c.Count = clampInt(n, 0, int(sp.max))
	case argSeconds:
		// Overflowing digits come back as ±Inf with ErrRange and are clamped;
		// the words NaN and Inf are not numbers.
		f, err := strconv.ParseFloat(strings.TrimSpace(args), 64)
		overflow := errors.Is(err, strconv.ErrRange)
		if (err != nil && !overflow) || math.IsNaN(f) || (math.IsInf(f, 0) && !overflow) {
			return Command{}, fmt.Errorf("%w: %q", ErrBadNumber, args)
		}
		c.Seconds = clampFloat(f, 0, sp.max)
	case argMessage:
		text, team, err := parseMessage(args)
		if err != nil {
			return Command{}, err
		}
		c.Text, c.Team = text, team
	}
	return c, nil
}

// splitCall separates "name(args)" into its parts. A bare token yields the
// whole token as the name.
func splitCall(tok string) (name, args string, hasCall bool, err error) {
	open := strings.IndexByte(tok, '(')
	if open < 0 {
		return tok, "", false, nil
	}
	name = strings.TrimSpace(tok[:open])
	if !strings.HasSuffix(tok, ")") {
		if _, ok := Lookup(name); !ok {
			return "", "", false, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		}
		return "", "", false, ErrMissingParen
	}
	return name, tok[open+1 : len(tok)-1], true, nil
}

// parseMessage handles "text, true". The boolean follows the last comma so
// the text itself may contain commas.
func parseMessage(args string) (string, bool, error) {
	i := strings.LastIndexByte(args, ',')
	if i < 0 {
		return "", false, fmt.Errorf("%w: no team flag", ErrBadMessage)
	}

	var team bool
	switch strings.ToLower(strings.TrimSpace(args[i+1:])) {
	case "true":
		team = true
	case "false":
		team = false
	default:
		return "", false, fmt.Errorf("%w: team flag %q", ErrBadMessage, strings.TrimSpace(args[i+1:]))
	}

	text := strings.TrimSpace(args[:i])
	text = strings.Trim(text, `"'`)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false, fmt.Errorf("%w: empty text", ErrBadMessage)
	}
	return text, team, nil
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
