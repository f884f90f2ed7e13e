package platform

import (
	"runtime"
	"testing"
)

func TestNewProvider_ReturnsProvider(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("skipping on non-windows")
	}
	// The windows package may or may not be linked into the test binary.
	// We just verify the function doesn't panic.
	_, _ = NewProvider()
}

func TestNewProvider_UnsupportedPlatform(t *testing.T) {
	// Temporarily clear the provider func to simulate unsupported platform
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider()
	if err == nil {
		t.Fatal("expected error on unsupported platform")
	}
	if err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewProvider_UsesRegisteredFunc(t *testing.T) {
	orig := NewProviderFunc
	defer func() { NewProviderFunc = orig }()

	want := &Provider{}
	NewProviderFunc = func() (*Provider, error) { return want, nil }

	got, err := NewProvider()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Error("NewProvider did not return the registered provider")
	}
}
