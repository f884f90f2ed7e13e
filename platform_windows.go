//go:build windows

package main

import _ "github.com/mj1618/winmatch/internal/platform/windows"
