//go:build windows

package windows

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/kbinani/screenshot"
	"github.com/mj1618/winmatch/internal/platform"
)

// Capturer implements platform.Capturer.
type Capturer struct{}

// NewCapturer creates a new Windows capturer.
func NewCapturer() *Capturer { return &Capturer{} }

// CaptureClient implements platform.Capturer.
func (c *Capturer) CaptureClient(h platform.Handle, method platform.CaptureMethod) (*image.RGBA, error) {
	if err := checkWindow(h); err != nil {
		return nil, err
	}
	switch method {
	case platform.CaptureScreen:
		return captureScreen(uintptr(h))
	default:
		return printWindow(uintptr(h))
	}
}

// captureScreen copies the client rectangle from the desktop. Anything
// covering the window ends up in the frame.
func captureScreen(hwnd uintptr) (*image.RGBA, error) {
	b, err := clientBounds(hwnd)
	if err != nil {
		return nil, err
	}
	if b.Width <= 0 || b.Height <= 0 {
		return nil, fmt.Errorf("invalid client size: %dx%d", b.Width, b.Height)
	}
	img, err := screenshot.CaptureRect(image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height))
	if err != nil {
		return nil, fmt.Errorf("screen capture failed: %w", err)
	}
	return img, nil
}

// printWindow asks the window to render its client area into a memory DC,
// which works while the window is covered by others.
func printWindow(hwnd uintptr) (*image.RGBA, error) {
	var r rect
	if ret, _, err := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&r))); ret == 0 {
		return nil, fmt.Errorf("GetClientRect failed: %v", err)
	}
	width, height := int(r.Right-r.Left), int(r.Bottom-r.Top)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid client size: %dx%d", width, height)
	}

	hdcWindow, _, err := procGetDC.Call(hwnd)
	if hdcWindow == 0 {
		return nil, fmt.Errorf("GetDC failed: %v", err)
	}
	defer procReleaseDC.Call(hwnd, hdcWindow)

	hdcMem, _, err := procCreateCompatibleDC.Call(hdcWindow)
	if hdcMem == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC failed: %v", err)
	}
	defer procDeleteDC.Call(hdcMem)

	hBitmap, _, err := procCreateCompatibleBitmap.Call(hdcWindow, uintptr(width), uintptr(height))
	if hBitmap == 0 {
		return nil, fmt.Errorf("CreateCompatibleBitmap failed: %v", err)
	}
	defer procDeleteObject.Call(hBitmap)

	old, _, _ := procSelectObject.Call(hdcMem, hBitmap)
	ret, _, err := procPrintWindow.Call(hwnd, hdcMem, pwClientOnly|pwRenderFullContent)
	// GetDIBits needs the bitmap deselected.
	procSelectObject.Call(hdcMem, old)
	if ret == 0 {
		return nil, fmt.Errorf("PrintWindow failed: %v", err)
	}

	var bi bitmapInfo
	bi.Header.Size = uint32(unsafe.Sizeof(bi.Header))
	bi.Header.Width = int32(width)
	bi.Header.Height = -int32(height) // top-down
	bi.Header.Planes = 1
	bi.Header.BitCount = 32
	bi.Header.Compression = biRGB

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	ret, _, err = procGetDIBits.Call(
		hdcMem,
		hBitmap,
		0,
		uintptr(height),
		uintptr(unsafe.Pointer(&img.Pix[0])),
		uintptr(unsafe.Pointer(&bi)),
		dibRGBColors,
	)
	if ret == 0 {
		return nil, fmt.Errorf("GetDIBits failed: %v", err)
	}

	// BGRX to RGBA. GDI leaves the fourth byte undefined, so every pixel
	// is made opaque.
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
		img.Pix[i+3] = 255
	}
	return img, nil
}
