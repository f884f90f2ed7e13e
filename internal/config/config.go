// Package config loads the profile file that drives the console and the
// run command.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mj1618/winmatch/internal/dispatch"
	"github.com/mj1618/winmatch/internal/match"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/mj1618/winmatch/internal/session"
)

var (
	// ErrConfigMissing means the config file does not exist.
	ErrConfigMissing = errors.New("config file not found")
	// ErrConfigInvalid means the config file could not be decoded or failed
	// validation.
	ErrConfigInvalid = errors.New("invalid config")
)

// Default values applied to keys the file leaves out.
const (
	DefaultPath       = "configs.json"
	DefaultResDir     = "res"
	DefaultStopKeys   = "shift+q"
	DefaultPadX       = 16
	DefaultPadY       = 39
	DefaultIntervalMS = 50
)

// Reserved lists the console commands a profile may not use as its cmd.
var Reserved = []string{"h", "help", "q", "quit", "exit", "t", "test"}

// IsReserved reports whether token is a built-in console command.
func IsReserved(token string) bool {
	for _, r := range Reserved {
		if token == r {
			return true
		}
	}
	return false
}

// Config is the whole configuration file.
type Config struct {
	Profiles  []Profile `yaml:"cfgs"                 json:"cfgs"                 ini:"-"`
	ResDir    string    `yaml:"res_dir"              json:"res_dir"              ini:"res_dir"`
	StopKeys  string    `yaml:"stop_keys"            json:"stop_keys"            ini:"stop_keys"`
	PadX      int       `yaml:"pad_x"                json:"pad_x"                ini:"pad_x"`
	PadY      int       `yaml:"pad_y"                json:"pad_y"                ini:"pad_y"`
	HistoryDB string    `yaml:"history_db,omitempty" json:"history_db,omitempty" ini:"history_db"`

	path string
}

// Profile is one console command and the window automation it starts.
type Profile struct {
	Cmd           string  `yaml:"cmd"                      json:"cmd"                      ini:"-"`
	WindowName    string  `yaml:"window_name"              json:"window_name"              ini:"window_name"`
	ClientWidth   int     `yaml:"client_width"             json:"client_width"             ini:"client_width"`
	ClientHeight  int     `yaml:"client_height"            json:"client_height"            ini:"client_height"`
	Foreground    bool    `yaml:"foreground"               json:"foreground"               ini:"foreground"`
	Alias         string  `yaml:"alias,omitempty"          json:"alias,omitempty"          ini:"alias"`
	MatchPicPath  string  `yaml:"match_pic_path,omitempty" json:"match_pic_path,omitempty" ini:"match_pic_path"`
	LowThreshold  float64 `yaml:"low_threshold"            json:"low_threshold"            ini:"low_threshold"`
	HighThreshold float64 `yaml:"high_threshold"           json:"high_threshold"           ini:"high_threshold"`
	IntervalMS    int     `yaml:"interval_ms"              json:"interval_ms"              ini:"interval_ms"`
	Capture       string  `yaml:"capture,omitempty"        json:"capture,omitempty"        ini:"capture"`
}

// Default returns a config with every global at its default and no profiles.
func Default() *Config {
	return &Config{
		ResDir:   DefaultResDir,
		StopKeys: DefaultStopKeys,
		PadX:     DefaultPadX,
		PadY:     DefaultPadY,
	}
}

// DefaultProfile returns a profile with every optional field at its default.
func DefaultProfile() Profile {
	return Profile{
		LowThreshold:  match.DefaultThresholds.Low,
		HighThreshold: match.DefaultThresholds.High,
		IntervalMS:    DefaultIntervalMS,
	}
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string { return c.path }

// DisplayName returns the alias, falling back to the command.
func (p *Profile) DisplayName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Cmd
}

// Thresholds returns the profile's score bands.
func (p *Profile) Thresholds() match.Thresholds {
	return match.Thresholds{Low: p.LowThreshold, High: p.HighThreshold}
}

// Profile looks up a profile by command token.
func (c *Config) Profile(cmd string) (*Profile, bool) {
	for i := range c.Profiles {
		if c.Profiles[i].Cmd == cmd {
			return &c.Profiles[i], true
		}
	}
	return nil, false
}

// TemplateDir returns the template directory for p under ResDir.
func (c *Config) TemplateDir(p *Profile) string {
	return filepath.Join(c.ResDir, p.MatchPicPath)
}

// StopCombo parses StopKeys.
func (c *Config) StopCombo() (platform.KeyCombo, error) {
	return platform.ParseKeyCombo(c.StopKeys)
}

// SessionOptions builds the options for a session of p.
func (c *Config) SessionOptions(p *Profile) (session.Options, error) {
	method, err := platform.ParseCaptureMethod(p.Capture)
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		Name:         p.Cmd,
		Alias:        p.Alias,
		WindowName:   p.WindowName,
		ClientWidth:  p.ClientWidth,
		ClientHeight: p.ClientHeight,
		PadX:         c.PadX,
		PadY:         c.PadY,
		Foreground:   p.Foreground,
		TemplateDir:  c.TemplateDir(p),
		Thresholds:   p.Thresholds(),
		Interval:     time.Duration(p.IntervalMS) * time.Millisecond,
		Capture:      method,
		Delays:       dispatch.DefaultDelays,
	}, nil
}

// Validate checks every profile and global. All problems are reported in a
// single error wrapping ErrConfigInvalid.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.Profiles) == 0 {
		add("cfgs: at least one profile is required")
	}
	if c.PadX < 0 || c.PadY < 0 {
		add("pad_x/pad_y must not be negative")
	}
	if _, err := c.StopCombo(); err != nil {
		add("stop_keys: %v", err)
	}

	seen := make(map[string]bool)
	for i := range c.Profiles {
		p := &c.Profiles[i]
		where := fmt.Sprintf("cfgs[%d]", i)
		if p.Cmd != "" {
			where = fmt.Sprintf("cfgs[%d] (%s)", i, p.Cmd)
		}
		switch {
		case strings.TrimSpace(p.Cmd) == "":
			add("%s: cmd is required", where)
		case strings.ContainsAny(p.Cmd, " \t"):
			add("%s: cmd must be a single word", where)
		case IsReserved(p.Cmd):
			add("%s: cmd %q is a built-in console command", where, p.Cmd)
		case seen[p.Cmd]:
			add("%s: duplicate cmd %q", where, p.Cmd)
		}
		seen[p.Cmd] = true

		if p.WindowName == "" {
			add("%s: window_name is required", where)
		}
		if p.ClientWidth < 0 || p.ClientHeight < 0 {
			add("%s: client size must not be negative", where)
		}
		if err := p.Thresholds().Validate(); err != nil {
			add("%s: %v", where, err)
		}
		if p.IntervalMS < 0 {
			add("%s: interval_ms must not be negative", where)
		}
		if _, err := platform.ParseCaptureMethod(p.Capture); err != nil {
			add("%s: %v", where, err)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(problems, "; "))
	}
	return nil
}
