//go:build windows

package windows

import "github.com/mj1618/winmatch/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Windows:       NewLister(),
			Capturer:      NewCapturer(),
			WindowManager: NewWindowManager(),
			Inputter:      NewInputter(),
			Keys:          NewKeyListener(),
		}, nil
	}
}
