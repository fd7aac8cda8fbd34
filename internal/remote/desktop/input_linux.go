//go:build linux

package desktop

import (
	"os/exec"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LinuxInputHandler synthesizes input on Linux via xdotool.
type LinuxInputHandler struct{}

// NewInputHandler creates a Linux input handler.
func NewInputHandler() InputHandler {
	return &LinuxInputHandler{}
}

func (h *LinuxInputHandler) SendMouseMove(x, y int) error {
	return exec.Command("xdotool", "mousemove", strconv.Itoa(x), strconv.Itoa(y)).Run()
}

func (h *LinuxInputHandler) SendMouseClick(x, y int, button string) error {
	if err := h.SendMouseMove(x, y); err != nil {
		return err
	}
	return exec.Command("xdotool", "click", xdotoolButton(button)).Run()
}

func (h *LinuxInputHandler) SendMouseDown(x, y int, button string) error {
	if err := h.SendMouseMove(x, y); err != nil {
		return err
	}
	return exec.Command("xdotool", "mousedown", xdotoolButton(button)).Run()
}

func (h *LinuxInputHandler) SendMouseUp(x, y int, button string) error {
	return exec.Command("xdotool", "mouseup", xdotoolButton(button)).Run()
}

// SendMouseScroll scrolls vertically by deltaY and horizontally by
// deltaX, button-click-per-notch in xdotool's model.
func (h *LinuxInputHandler) SendMouseScroll(deltaX, deltaY int) error {
	if err := h.scrollAxis(deltaY, "4", "5"); err != nil {
		return err
	}
	return h.scrollAxis(deltaX, "7", "6")
}

func (h *LinuxInputHandler) scrollAxis(delta int, positiveButton, negativeButton string) error {
	button := positiveButton
	if delta < 0 {
		button = negativeButton
		delta = -delta
	}
	for i := 0; i < delta; i++ {
		if err := exec.Command("xdotool", "click", button).Run(); err != nil {
			return err
		}
	}
	return nil
}

func (h *LinuxInputHandler) SendKeyPress(key string, modifiers []string) error {
	combo := keyCombo(key, modifiers)
	if combo == "" {
		return nil
	}
	return exec.Command("xdotool", "key", combo).Run()
}

func (h *LinuxInputHandler) SendKeyDown(key string) error {
	name := translateKeyLinux(key)
	if name == "" {
		return nil
	}
	return exec.Command("xdotool", "keydown", name).Run()
}

func (h *LinuxInputHandler) SendKeyUp(key string) error {
	name := translateKeyLinux(key)
	if name == "" {
		return nil
	}
	return exec.Command("xdotool", "keyup", name).Run()
}

func (h *LinuxInputHandler) TypeText(text string) error {
	if text == "" {
		return nil
	}
	return exec.Command("xdotool", "type", "--", text).Run()
}

func (h *LinuxInputHandler) HandleEvent(event InputEvent) error {
	switch event.Type {
	case "mouse_move":
		return h.SendMouseMove(event.X, event.Y)
	case "mouse_click":
		return h.SendMouseClick(event.X, event.Y, event.Button)
	case "mouse_down":
		return h.SendMouseDown(event.X, event.Y, event.Button)
	case "mouse_up":
		return h.SendMouseUp(event.X, event.Y, event.Button)
	case "mouse_scroll":
		return h.SendMouseScroll(event.DeltaX, event.DeltaY)
	case "key_press":
		return h.SendKeyPress(event.Key, event.Modifiers)
	case "key_down":
		return h.SendKeyDown(event.Key)
	case "key_up":
		return h.SendKeyUp(event.Key)
	case "type_text":
		return h.TypeText(event.Text)
	default:
		return nil
	}
}

func xdotoolButton(button string) string {
	switch normalizeButton(button) {
	case "right":
		return "3"
	case "middle":
		return "2"
	default:
		return "1"
	}
}

func keyCombo(key string, modifiers []string) string {
	name := translateKeyLinux(key)
	if name == "" {
		return ""
	}
	if len(modifiers) == 0 {
		return name
	}
	mods := make([]string, 0, len(modifiers))
	for _, m := range modifiers {
		if mod := translateModifierLinux(m); mod != "" {
			mods = append(mods, mod)
		}
	}
	return strings.Join(append(mods, name), "+")
}

func translateModifierLinux(m string) string {
	switch strings.ToLower(m) {
	case "ctrl", "control":
		return "ctrl"
	case "alt":
		return "alt"
	case "shift":
		return "shift"
	case "meta", "super", "win", "cmd":
		return "super"
	default:
		return ""
	}
}

// translateKeyLinux resolves the spec's key-name table to an xdotool
// key symbol, falling back to the literal unicode character for
// single-character keys and "" (no-op) for anything unrecognized.
func translateKeyLinux(key string) string {
	switch strings.ToLower(key) {
	case "enter", "return":
		return "Return"
	case "tab":
		return "Tab"
	case "escape", "esc":
		return "Escape"
	case "backspace":
		return "BackSpace"
	case "delete":
		return "Delete"
	case "space":
		return "space"
	case "up", "arrowup":
		return "Up"
	case "down", "arrowdown":
		return "Down"
	case "left", "arrowleft":
		return "Left"
	case "right", "arrowright":
		return "Right"
	case "home":
		return "Home"
	case "end":
		return "End"
	case "pageup":
		return "Page_Up"
	case "pagedown":
		return "Page_Down"
	case "shift":
		return "shift"
	case "control", "ctrl":
		return "ctrl"
	case "alt":
		return "alt"
	case "meta", "win", "cmd":
		return "super"
	case "f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12":
		return strings.ToUpper(key)
	}

	if utf8.RuneCountInString(key) == 1 {
		return key
	}
	return ""
}
