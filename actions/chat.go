package actions

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
)

const (
	chatOpenKey   = "enter"
	chatSwitchKey = "tab"

	chatSwitchPause = 50 * time.Millisecond
	chatSendPause   = 100 * time.Millisecond

	typeDelayMin = 20 * time.Millisecond
	typeDelayMax = 100 * time.Millisecond
)

// Chat types text into the in-game chat, switching between team and match
// chat first if needed. The push-to-talk hook ignores key events while a
// message is being typed.
func (e *Executor) Chat(ctx context.Context, text string, team bool) error {
	e.state.SetSimulatingInput(true)
	defer e.state.SetSimulatingInput(false)

	want := types.ChatModeFor(team)
	text = norm.NFC.String(text)

	if want != e.state.ChatMode() {
		if err := e.chatSwitching(ctx, text); err != nil {
			return err
		}
		e.state.SetChatMode(want)
		e.logger.Debug("chat mode switched", "mode", want)
		return nil
	}
	return e.chatSameMode(ctx, text)
}

func (e *Executor) chatSwitching(ctx context.Context, text string) error {
	if err := e.Press(ctx, chatOpenKey); err != nil {
		return fmt.Errorf("open chat: %w", err)
	}
	if err := e.sleep(ctx, chatSwitchPause); err != nil {
		return err
	}
	if err := e.Press(ctx, chatSwitchKey); err != nil {
		return fmt.Errorf("switch chat: %w", err)
	}
	if err := e.typeText(ctx, text); err != nil {
		return err
	}
	if err := e.sleep(ctx, chatSwitchPause); err != nil {
		return err
	}
	if err := e.Press(ctx, chatOpenKey); err != nil {
		return fmt.Errorf("send chat: %w", err)
	}
	return nil
}

func (e *Executor) chatSameMode(ctx context.Context, text string) error {
	if err := e.Press(ctx, chatOpenKey); err != nil {
		return fmt.Errorf("open chat: %w", err)
	}
	if err := e.typeText(ctx, text); err != nil {
		return err
	}
	if err := e.sleep(ctx, chatSendPause); err != nil {
		return err
	}
	if err := e.Press(ctx, chatOpenKey); err != nil {
		return fmt.Errorf("send chat: %w", err)
	}
	return nil
}

func (e *Executor) typeText(ctx context.Context, text string) error {
	for _, r := range text {
		if err := e.dev.TypeRune(r); err != nil {
			return fmt.Errorf("type %q: %w", r, err)
		}
		if err := e.sleep(ctx, e.uniform(typeDelayMin, typeDelayMax)); err != nil {
			return err
		}
	}
	return nil
}
