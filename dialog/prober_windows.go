//go:build windows

package dialog

import (
	"log/slog"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows  = user32.NewProc("EnumWindows")
	procGetWindowTxt = user32.NewProc("GetWindowTextW")
	procFindWindowEx = user32.NewProc("FindWindowExW")
	procSendMessage  = user32.NewProc("SendMessageW")
	procPostMessage  = user32.NewProc("PostMessageW")
)

const (
	bmClick   = 0x00F5
	wmKeyDown = 0x0100
	wmKeyUp   = 0x0101
	vkReturn  = 0x0D
)

// user32Prober dismisses certificate dialogs through the Win32 window API.
type user32Prober struct{}

// newPlatformProber verifies user32 is loadable before handing the prober out.
func newPlatformProber() (prober, error) {
	if err := user32.Load(); err != nil {
		return nil, ErrUnavailable
	}
	return &user32Prober{}, nil
}

// The enumeration callback is registered exactly once: the runtime never
// releases syscall callbacks and caps them per process, so registering one
// per sweep would exhaust the table after a few thousand poll cycles.
// EnumWindows is synchronous, so sweep state lives behind enumMu for the
// duration of the call.
var (
	enumMu        sync.Mutex
	enumDismissed int

	enumCallback = syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		title := windowTitle(hwnd)
		if title == "" || !isCertDialogTitle(title) {
			return 1 // continue enumeration
		}

		if err := confirmDialog(hwnd); err != nil {
			slog.Warn("failed to dismiss certificate dialog",
				"title", title, "error", err,
			)
			return 1
		}
		enumDismissed++
		return 1
	})
)

// dismiss enumerates top-level windows and confirms every certificate
// dialog it finds. Per-window failures are swallowed and logged so one bad
// handle never stops the sweep.
func (p *user32Prober) dismiss() (int, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumDismissed = 0
	ret, _, err := procEnumWindows.Call(enumCallback, 0)
	if ret == 0 {
		return enumDismissed, err
	}
	return enumDismissed, nil
}

// confirmDialog clicks the dialog's OK button, or falls back to sending the
// Return key to the window itself when no button child is found.
func confirmDialog(hwnd uintptr) error {
	if okBtn := findOKButton(hwnd); okBtn != 0 {
		ret, _, err := procSendMessage.Call(okBtn, bmClick, 0, 0)
		_ = ret
		if err != nil && err != windows.ERROR_SUCCESS {
			return err
		}
		return nil
	}

	// No button located; accept the dialog with its default action.
	if _, _, err := procPostMessage.Call(hwnd, wmKeyDown, vkReturn, 0); err != nil && err != windows.ERROR_SUCCESS {
		return err
	}
	_, _, _ = procPostMessage.Call(hwnd, wmKeyUp, vkReturn, 0)
	return nil
}

// findOKButton walks the dialog's Button children looking for an
// OK-equivalent caption.
func findOKButton(hwnd uintptr) uintptr {
	className, _ := windows.UTF16PtrFromString("Button")

	var child uintptr
	for {
		ret, _, _ := procFindWindowEx.Call(
			hwnd, child,
			uintptr(unsafe.Pointer(className)), 0,
		)
		if ret == 0 {
			return 0
		}
		child = ret

		switch caption := windowTitle(child); caption {
		case "OK", "&OK", "Ok":
			return child
		}
	}
}

// windowTitle reads a window's title text, "" on failure.
func windowTitle(hwnd uintptr) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTxt.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
