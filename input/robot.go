// Package input provides the keyboard and mouse devices actions run on.
package input

import (
	"github.com/go-vgo/robotgo"
)

// Robot injects input events into the desktop session.
type Robot struct{}

// NewRobot returns the desktop input device.
func NewRobot() *Robot {
	return &Robot{}
}

func (*Robot) KeyDown(key string) error {
	return robotgo.KeyDown(robotKey(key))
}

func (*Robot) KeyUp(key string) error {
	return robotgo.KeyUp(robotKey(key))
}

func (*Robot) TypeRune(r rune) error {
	robotgo.TypeStr(string(r))
	return nil
}

func (*Robot) MouseDown(button string) error {
	return robotgo.Toggle(button)
}

func (*Robot) MouseUp(button string) error {
	return robotgo.Toggle(button, "up")
}

func (*Robot) MousePosition() (int, int) {
	return robotgo.Location()
}

func (*Robot) MoveMouse(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (*Robot) Scroll(ticks int) error {
	robotgo.Scroll(0, ticks)
	return nil
}

func (*Robot) DoubleClick(button string) error {
	robotgo.Click(button, true)
	return nil
}

// robotKey maps the names used by the command language to robotgo's.
func robotKey(key string) string {
	switch key {
	case "lshift":
		return "shift"
	case "lctrl":
		return "ctrl"
	case "lalt":
		return "alt"
	case "escape":
		return "esc"
	default:
		return key
	}
}
