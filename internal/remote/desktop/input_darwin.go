//go:build darwin

package desktop

import (
	"fmt"
	"os/exec"
	"strings"
)

// DarwinInputHandler synthesizes input on macOS via cliclick when
// present, falling back to AppleScript through osascript.
type DarwinInputHandler struct{}

// NewInputHandler creates a macOS input handler.
func NewInputHandler() InputHandler {
	return &DarwinInputHandler{}
}

func (h *DarwinInputHandler) SendMouseMove(x, y int) error {
	if _, err := exec.LookPath("cliclick"); err == nil {
		return exec.Command("cliclick", fmt.Sprintf("m:%d,%d", x, y)).Run()
	}
	script := fmt.Sprintf(`tell application "System Events" to set mouseLocation to {%d, %d}`, x, y)
	return exec.Command("osascript", "-e", script).Run()
}

func (h *DarwinInputHandler) SendMouseClick(x, y int, button string) error {
	button = normalizeButton(button)
	if _, err := exec.LookPath("cliclick"); err == nil {
		btn := "c"
		if button == "right" {
			btn = "rc"
		}
		return exec.Command("cliclick", fmt.Sprintf("%s:%d,%d", btn, x, y)).Run()
	}
	script := fmt.Sprintf(`tell application "System Events" to click at {%d, %d}`, x, y)
	return exec.Command("osascript", "-e", script).Run()
}

func (h *DarwinInputHandler) SendMouseDown(x, y int, button string) error {
	button = normalizeButton(button)
	if _, err := exec.LookPath("cliclick"); err == nil {
		btn := "dd"
		if button == "right" {
			btn = "rd"
		}
		return exec.Command("cliclick", fmt.Sprintf("%s:%d,%d", btn, x, y)).Run()
	}
	return nil
}

func (h *DarwinInputHandler) SendMouseUp(x, y int, button string) error {
	button = normalizeButton(button)
	if _, err := exec.LookPath("cliclick"); err == nil {
		btn := "du"
		if button == "right" {
			btn = "ru"
		}
		return exec.Command("cliclick", fmt.Sprintf("%s:%d,%d", btn, x, y)).Run()
	}
	return nil
}

func (h *DarwinInputHandler) SendMouseScroll(deltaX, deltaY int) error {
	if deltaY != 0 {
		if err := h.scrollAxis("down", deltaY); err != nil {
			return err
		}
	}
	if deltaX != 0 {
		return h.scrollAxis("right", deltaX)
	}
	return nil
}

func (h *DarwinInputHandler) scrollAxis(positiveDirection string, delta int) error {
	direction := positiveDirection
	if delta < 0 {
		delta = -delta
		switch positiveDirection {
		case "down":
			direction = "up"
		case "right":
			direction = "left"
		}
	}
	script := fmt.Sprintf(`tell application "System Events" to scroll %s by %d`, direction, delta)
	return exec.Command("osascript", "-e", script).Run()
}

func (h *DarwinInputHandler) SendKeyPress(key string, modifiers []string) error {
	if key == "" {
		return nil
	}
	if _, err := exec.LookPath("cliclick"); err == nil {
		keyStr := key
		for _, m := range modifiers {
			if mod := darwinCliclickModifier(m); mod != "" {
				keyStr = mod + "+" + keyStr
			}
		}
		return exec.Command("cliclick", "kp:"+keyStr).Run()
	}

	var modStr string
	if len(modifiers) > 0 {
		mods := make([]string, 0, len(modifiers))
		for _, m := range modifiers {
			if mod := darwinAppleScriptModifier(m); mod != "" {
				mods = append(mods, mod)
			}
		}
		if len(mods) > 0 {
			modStr = " using {" + strings.Join(mods, ", ") + "}"
		}
	}

	script := fmt.Sprintf(`tell application "System Events" to keystroke "%s"%s`, key, modStr)
	return exec.Command("osascript", "-e", script).Run()
}

// SendKeyDown is not separately representable through osascript; a
// standalone key-down with no matching key-up is a no-op here.
func (h *DarwinInputHandler) SendKeyDown(key string) error { return nil }

// SendKeyUp mirrors SendKeyDown's limitation.
func (h *DarwinInputHandler) SendKeyUp(key string) error { return nil }

func (h *DarwinInputHandler) TypeText(text string) error {
	if text == "" {
		return nil
	}
	escaped := strings.ReplaceAll(text, `"`, `\"`)
	script := fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escaped)
	return exec.Command("osascript", "-e", script).Run()
}

func (h *DarwinInputHandler) HandleEvent(event InputEvent) error {
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

func darwinCliclickModifier(m string) string {
	switch strings.ToLower(m) {
	case "ctrl", "control":
		return "ctrl"
	case "alt":
		return "alt"
	case "shift":
		return "shift"
	case "meta", "cmd", "win":
		return "cmd"
	default:
		return ""
	}
}

func darwinAppleScriptModifier(m string) string {
	switch strings.ToLower(m) {
	case "ctrl", "control":
		return "control down"
	case "alt":
		return "option down"
	case "shift":
		return "shift down"
	case "meta", "cmd", "win":
		return "command down"
	default:
		return ""
	}
}
