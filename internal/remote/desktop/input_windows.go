//go:build windows

package desktop

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	sendInput        = user32.NewProc("SendInput")
	setcursorpos     = user32.NewProc("SetCursorPos")
	mapvirtualkey    = user32.NewProc("MapVirtualKeyW")
	getSystemMetrics = user32.NewProc("GetSystemMetrics")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseeventfMove        = 0x0001
	mouseeventfLeftDown    = 0x0002
	mouseeventfLeftUp      = 0x0004
	mouseeventfRightDown   = 0x0008
	mouseeventfRightUp     = 0x0010
	mouseeventfMiddleDown  = 0x0020
	mouseeventfMiddleUp    = 0x0040
	mouseeventfWheel       = 0x0800
	mouseeventfHWheel      = 0x1000
	mouseeventfAbsolute    = 0x8000
	mouseeventfVirtualDesk = 0x4000

	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	keyeventfKeyUp       = 0x0002
	keyeventfUnicode     = 0x0004
	keyeventfExtendedKey = 0x0001

	mapvkVKToVSC = 0

	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkLWin    = 0x5B
)

type mouseInput struct {
	dx, dy      int32
	mouseData   uint32
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type inputRecord struct {
	inputType uint32
	padding   [4]byte
	mi        mouseInput
}

// WindowsInputHandler synthesizes input via the SendInput/SetCursorPos
// Win32 API, reached through golang.org/x/sys/windows's lazy DLL
// bindings rather than hand-rolled syscall plumbing.
type WindowsInputHandler struct {
	mu           sync.Mutex
	buttonDown   bool
	offsetX      int
	offsetY      int
	cachedVX     int
	cachedVY     int
	cachedCW     int
	cachedCH     int
	metricsValid bool
}

// NewInputHandler creates a Windows input handler.
func NewInputHandler() InputHandler {
	return &WindowsInputHandler{}
}

func (h *WindowsInputHandler) SetDisplayOffset(x, y int) {
	h.mu.Lock()
	h.offsetX = x
	h.offsetY = y
	h.mu.Unlock()
}

func (h *WindowsInputHandler) SendMouseMove(x, y int) error {
	h.mu.Lock()
	dragging := h.buttonDown
	h.mu.Unlock()

	if dragging {
		// During a drag, route through SendInput so the move respects mouse
		// capture; SetCursorPos alone drops WM_MOUSEMOVE's MK_LBUTTON bit.
		vx, vy, ok := h.screenToAbsolute(x, y)
		if ok {
			inp := inputRecord{inputType: inputMouse}
			inp.mi.dx = vx
			inp.mi.dy = vy
			inp.mi.dwFlags = mouseeventfMove | mouseeventfAbsolute | mouseeventfVirtualDesk
			sendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
			return nil
		}
	}
	ret, _, _ := setcursorpos.Call(uintptr(x), uintptr(y))
	if ret == 0 {
		return fmt.Errorf("SetCursorPos failed")
	}
	return nil
}

// refreshScreenMetrics refreshes the cached virtual screen metrics.
// Caller must hold h.mu.
func (h *WindowsInputHandler) refreshScreenMetrics() {
	vx, _, _ := getSystemMetrics.Call(smXVirtualScreen)
	vy, _, _ := getSystemMetrics.Call(smYVirtualScreen)
	cw, _, _ := getSystemMetrics.Call(smCXVirtualScreen)
	ch, _, _ := getSystemMetrics.Call(smCYVirtualScreen)
	h.cachedVX, h.cachedVY = int(vx), int(vy)
	h.cachedCW, h.cachedCH = int(cw), int(ch)
	h.metricsValid = h.cachedCW > 0 && h.cachedCH > 0
}

// screenToAbsolute converts screen coordinates to the normalized
// 0-65535 coordinate space required by MOUSEEVENTF_ABSOLUTE|VIRTUALDESK.
func (h *WindowsInputHandler) screenToAbsolute(x, y int) (absX, absY int32, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.metricsValid {
		return 0, 0, false
	}
	absX = int32(((x - h.cachedVX) * 65536) / h.cachedCW)
	absY = int32(((y - h.cachedVY) * 65536) / h.cachedCH)
	return absX, absY, true
}

func (h *WindowsInputHandler) SendMouseClick(x, y int, button string) error {
	if err := h.SendMouseMove(x, y); err != nil {
		return err
	}
	if err := h.SendMouseDown(x, y, button); err != nil {
		return err
	}
	return h.SendMouseUp(x, y, button)
}

func (h *WindowsInputHandler) SendMouseDown(x, y int, button string) error {
	h.mu.Lock()
	h.buttonDown = true
	h.refreshScreenMetrics()
	h.mu.Unlock()

	if err := h.SendMouseMove(x, y); err != nil {
		return err
	}

	var flags uint32
	switch normalizeButton(button) {
	case "right":
		flags = mouseeventfRightDown
	case "middle":
		flags = mouseeventfMiddleDown
	default:
		flags = mouseeventfLeftDown
	}

	inp := inputRecord{inputType: inputMouse}
	inp.mi.dwFlags = flags
	ret, _, _ := sendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
	if ret == 0 {
		return fmt.Errorf("SendInput failed for mouse_down")
	}
	return nil
}

func (h *WindowsInputHandler) SendMouseUp(x, y int, button string) error {
	if err := h.SendMouseMove(x, y); err != nil {
		return err
	}

	h.mu.Lock()
	h.buttonDown = false
	h.mu.Unlock()

	var flags uint32
	switch normalizeButton(button) {
	case "right":
		flags = mouseeventfRightUp
	case "middle":
		flags = mouseeventfMiddleUp
	default:
		flags = mouseeventfLeftUp
	}

	inp := inputRecord{inputType: inputMouse}
	inp.mi.dwFlags = flags
	ret, _, _ := sendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
	if ret == 0 {
		return fmt.Errorf("SendInput failed for mouse_up")
	}
	return nil
}

// SendMouseScroll scrolls vertically by deltaY and horizontally by
// deltaX, each notch worth WHEEL_DELTA (120).
func (h *WindowsInputHandler) SendMouseScroll(deltaX, deltaY int) error {
	if deltaY != 0 {
		inp := inputRecord{inputType: inputMouse}
		inp.mi.dwFlags = mouseeventfWheel
		// Browser deltaY positive means scroll down; WHEEL positive means up.
		inp.mi.mouseData = uint32(int32(-deltaY * 120))
		sendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
	}
	if deltaX != 0 {
		inp := inputRecord{inputType: inputMouse}
		inp.mi.dwFlags = mouseeventfHWheel
		inp.mi.mouseData = uint32(int32(deltaX * 120))
		sendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
	}
	return nil
}

func (h *WindowsInputHandler) SendKeyPress(key string, modifiers []string) error {
	for _, mod := range modifiers {
		h.sendModifierKey(mod, false)
	}

	downErr := h.SendKeyDown(key)
	if downErr == nil {
		h.SendKeyUp(key)
	}

	for i := len(modifiers) - 1; i >= 0; i-- {
		h.sendModifierKey(modifiers[i], true)
	}
	return downErr
}

func (h *WindowsInputHandler) sendModifierKey(mod string, up bool) {
	var vk uint16
	switch strings.ToLower(mod) {
	case "ctrl", "control":
		vk = vkControl
	case "alt":
		vk = vkMenu
	case "shift":
		vk = vkShift
	case "meta", "cmd":
		vk = vkControl
	case "win":
		vk = vkLWin
	default:
		return
	}

	inp := inputRecord{inputType: inputKeyboard}
	ki := (*keybdInput)(unsafe.Pointer(&inp.mi))
	ki.wVk = vk
	ki.wScan = vkToScanCode(vk)
	if up {
		ki.dwFlags = keyeventfKeyUp
	}
	sendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
}

// vkToScanCode derives the hardware scan code for a VK via
// MapVirtualKeyW; several Windows apps require it populated in the
// INPUT struct for key events to register.
func vkToScanCode(vk uint16) uint16 {
	sc, _, _ := mapvirtualkey.Call(uintptr(vk), mapvkVKToVSC)
	return uint16(sc)
}

func isExtendedKey(vk uint16) bool {
	switch vk {
	case 0x21, 0x22, 0x23, 0x24,
		0x25, 0x26, 0x27, 0x28,
		0x2D, 0x2E,
		0x5B, 0x5C,
		0x6F,
		0x90,
		0x91,
		0x2C:
		return true
	}
	return false
}

func (h *WindowsInputHandler) SendKeyDown(key string) error {
	vk := charToVK(key)
	if vk == 0 {
		return fmt.Errorf("unknown key: %s", key)
	}

	inp := inputRecord{inputType: inputKeyboard}
	ki := (*keybdInput)(unsafe.Pointer(&inp.mi))
	ki.wVk = vk
	ki.wScan = vkToScanCode(vk)
	if isExtendedKey(vk) {
		ki.dwFlags = keyeventfExtendedKey
	}

	ret, _, _ := sendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
	if ret == 0 {
		return fmt.Errorf("SendInput failed for key_down vk=0x%X", vk)
	}
	return nil
}

func (h *WindowsInputHandler) SendKeyUp(key string) error {
	vk := charToVK(key)
	if vk == 0 {
		return fmt.Errorf("unknown key: %s", key)
	}

	inp := inputRecord{inputType: inputKeyboard}
	ki := (*keybdInput)(unsafe.Pointer(&inp.mi))
	ki.wVk = vk
	ki.wScan = vkToScanCode(vk)
	ki.dwFlags = keyeventfKeyUp
	if isExtendedKey(vk) {
		ki.dwFlags |= keyeventfExtendedKey
	}

	ret, _, _ := sendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
	if ret == 0 {
		return fmt.Errorf("SendInput failed for key_up vk=0x%X", vk)
	}
	return nil
}

// TypeText sends each rune as a unicode keyboard event (KEYEVENTF_UNICODE),
// bypassing VK mapping entirely so arbitrary text, not just the named
// key table, can be injected.
func (h *WindowsInputHandler) TypeText(text string) error {
	for _, r := range utf16.Encode([]rune(text)) {
		if err := h.sendUnicodeChar(r, false); err != nil {
			return err
		}
		if err := h.sendUnicodeChar(r, true); err != nil {
			return err
		}
	}
	return nil
}

func (h *WindowsInputHandler) sendUnicodeChar(char uint16, up bool) error {
	inp := inputRecord{inputType: inputKeyboard}
	ki := (*keybdInput)(unsafe.Pointer(&inp.mi))
	ki.wScan = char
	ki.dwFlags = keyeventfUnicode
	if up {
		ki.dwFlags |= keyeventfKeyUp
	}
	ret, _, _ := sendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
	if ret == 0 {
		return fmt.Errorf("SendInput failed for type_text")
	}
	return nil
}

func (h *WindowsInputHandler) HandleEvent(event InputEvent) error {
	h.mu.Lock()
	event.X += h.offsetX
	event.Y += h.offsetY
	h.mu.Unlock()

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

func charToVK(key string) uint16 {
	if len(key) == 1 {
		c := key[0]
		if c >= 'a' && c <= 'z' {
			return uint16(c - 'a' + 'A')
		}
		if c >= 'A' && c <= 'Z' {
			return uint16(c)
		}
		if c >= '0' && c <= '9' {
			return uint16(c)
		}
	}

	switch strings.ToLower(key) {
	case "enter", "return":
		return 0x0D
	case "tab":
		return 0x09
	case "space":
		return 0x20
	case "backspace":
		return 0x08
	case "escape", "esc":
		return 0x1B
	case "delete", "del":
		return 0x2E
	case "insert":
		return 0x2D

	case "home":
		return 0x24
	case "end":
		return 0x23
	case "pageup":
		return 0x21
	case "pagedown":
		return 0x22
	case "up", "arrowup":
		return 0x26
	case "down", "arrowdown":
		return 0x28
	case "left", "arrowleft":
		return 0x25
	case "right", "arrowright":
		return 0x27

	case "f1":
		return 0x70
	case "f2":
		return 0x71
	case "f3":
		return 0x72
	case "f4":
		return 0x73
	case "f5":
		return 0x74
	case "f6":
		return 0x75
	case "f7":
		return 0x76
	case "f8":
		return 0x77
	case "f9":
		return 0x78
	case "f10":
		return 0x79
	case "f11":
		return 0x7A
	case "f12":
		return 0x7B

	case "-":
		return 0xBD
	case "=":
		return 0xBB
	case "[":
		return 0xDB
	case "]":
		return 0xDD
	case "\\":
		return 0xDC
	case ";":
		return 0xBA
	case "'":
		return 0xDE
	case "`":
		return 0xC0
	case ",":
		return 0xBC
	case ".":
		return 0xBE
	case "/":
		return 0xBF

	case "capslock":
		return 0x14
	case "numlock":
		return 0x90
	case "scrolllock":
		return 0x91
	case "printscreen":
		return 0x2C
	case "pause":
		return 0x13

	case "shift":
		return vkShift
	case "control", "ctrl":
		return vkControl
	case "alt":
		return vkMenu
	case "meta", "win", "cmd":
		return vkLWin
	}

	return 0
}
